package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"rankwatch/internal/analyzer"
	"rankwatch/internal/interfaces"
	"rankwatch/internal/keywords"
	"rankwatch/internal/llm"
	"rankwatch/internal/llm/genobs"
	"rankwatch/internal/logger"
	"rankwatch/internal/metrics"
	"rankwatch/internal/notify"
	"rankwatch/internal/pipeline"
	"rankwatch/internal/pipeline/pipelineobs"
	"rankwatch/internal/runlog"
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
	if err := trace.Init("rankwatch-reporter"); err != nil {
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

// checkSecrets warns about missing secrets in DRY_RUN and refuses in LIVE
func checkSecrets(ctx context.Context, cfg *store.Config) error {
	missing := cfg.MissingSecrets()
	if len(missing) == 0 {
		return nil
	}
	if cfg.Mode == "LIVE" {
		return fmt.Errorf("missing secrets: %v", missing)
	}
	logger.Warn(ctx, "Missing secrets, continuing in DRY_RUN", "missing", missing)
	return nil
}

// compressOldLogs compresses old run logs if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("RANKWATCH_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := runlog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
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
	} else {
		logger.Info(ctx, "Rank fetcher ready", "provider", cfg.Serp.Provider)
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

// initializePipeline assembles the batch pipeline with observability
func initializePipeline(cfg *store.Config, source interfaces.KeywordSource, fetcher interfaces.RankFetcher, gen interfaces.TextGenerator) interfaces.Pipeline {
	anl := analyzer.New(cfg, gen, fetcher, source, nil)
	p := pipeline.New(cfg, source, fetcher, anl)

	// Wrap with observability middleware
	return pipelineobs.Wrap(p)
}

// initializeNotifier initializes and returns the Discord webhook notifier
func initializeNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - the report will be logged, not posted")
	}
	return notify.NewWebhookNotifier(cfg)
}
