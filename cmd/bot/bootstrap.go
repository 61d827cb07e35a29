package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"rankwatch/internal/analyzer"
	"rankwatch/internal/content"
	"rankwatch/internal/interfaces"
	"rankwatch/internal/keywords"
	"rankwatch/internal/llm"
	"rankwatch/internal/llm/genobs"
	"rankwatch/internal/logger"
	"rankwatch/internal/metrics"
	"rankwatch/internal/serp"
	"rankwatch/internal/serp/serpobs"
	"rankwatch/internal/store"
	"rankwatch/internal/trace"
)

// initializeSystem initializes logger, tracer and metrics
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init("rankwatch-bot"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	metrics.Init()
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// warnSecrets logs missing secrets. The bot keeps running with degraded
// commands; only the gateway token is checked hard, in bot.NewService.
func warnSecrets(ctx context.Context, cfg *store.Config) {
	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		logger.Warn(ctx, "Missing secrets, some commands will be degraded", "missing", missing)
	}
}

// initializeKeywordSource initializes and returns the keyword source
func initializeKeywordSource(ctx context.Context, cfg *store.Config) (interfaces.KeywordSource, error) {
	source, err := keywords.New(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Keyword source ready", "provider", cfg.Keywords.Provider)
	return source, nil
}

// initializeFetcher initializes and returns the rank fetcher with observability
func initializeFetcher(ctx context.Context, cfg *store.Config) (interfaces.RankFetcher, error) {
	fetcher, err := serp.New(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Serp.Provider == "MOCK" {
		logger.Warn(ctx, "Using MOCK rank data - lookups are simulated")
	}

	// Wrap with observability middleware
	return serpobs.Wrap(fetcher), nil
}

// initializeGenerator initializes and returns the text generator with observability
func initializeGenerator(ctx context.Context, cfg *store.Config) (interfaces.TextGenerator, error) {
	gen, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Wrap with observability middleware
	return genobs.Wrap(gen, cfg.LLM.Provider), nil
}

// initializeAnalyzer builds the on-demand analyzer, with page profiling
// when enabled in config
func initializeAnalyzer(cfg *store.Config, gen interfaces.TextGenerator, fetcher interfaces.RankFetcher, source interfaces.KeywordSource) interfaces.Analyzer {
	var profiler interfaces.PageProfiler
	if cfg.Analysis.ProfilePages {
		profiler = content.NewProfiler(cfg)
	}
	return analyzer.New(cfg, gen, fetcher, source, profiler)
}
