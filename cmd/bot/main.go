package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rankwatch/internal/bot"
	"rankwatch/internal/logger"
	"rankwatch/internal/ops"
	"rankwatch/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		os.Exit(1)
	}
	warnSecrets(ctx, cfg)

	source, err := initializeKeywordSource(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build keyword source", err)
		os.Exit(1)
	}
	fetcher, err := initializeFetcher(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build rank fetcher", err)
		os.Exit(1)
	}
	gen, err := initializeGenerator(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build text generator", err)
		os.Exit(1)
	}

	anl := initializeAnalyzer(cfg, gen, fetcher, source)
	dispatcher := bot.NewDispatcher(cfg, source, fetcher, anl, gen)

	svc, err := bot.NewService(cfg, dispatcher)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build discord service", err)
		os.Exit(1)
	}
	if err := svc.Start(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Failed to connect to discord", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Bot started.")

	var opsServer *ops.Server
	if cfg.Ops.ListenAddr != "" {
		opsServer = ops.NewServer(cfg)
		opsServer.AddHealthCheck("discord_gateway", svc.Connected)
		go func() {
			if err := opsServer.Start(ctx); err != nil {
				logger.ErrorWithErr(ctx, "Ops server stopped", err)
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigc:
		logger.Info(ctx, "Shutting down...")
	case <-ctx.Done():
	}

	if opsServer != nil {
		_ = opsServer.Shutdown()
	}
	if err := svc.Stop(); err != nil {
		logger.Warn(ctx, "Error closing discord session", "error", err.Error())
	}
}
