package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rankwatch/internal/interfaces"
	"rankwatch/internal/logger"
	"rankwatch/internal/metrics"
	"rankwatch/internal/runlog"
	"rankwatch/internal/store"
	"rankwatch/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	interval := flag.Duration("interval", 0, "repeat the run on this interval instead of exiting")
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
	if err := checkSecrets(ctx, cfg); err != nil {
		logger.ErrorWithErr(ctx, "Refusing to start with missing secrets", err)
		os.Exit(1)
	}
	compressOldLogs(ctx)

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

	pipe := initializePipeline(cfg, source, fetcher, gen)
	notifier := initializeNotifier(ctx, cfg)

	if *interval <= 0 {
		if err := runOnce(ctx, cfg, pipe, notifier); err != nil {
			os.Exit(1)
		}
		return
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(*interval)
	defer tick.Stop()

	logger.Info(ctx, "Reporter started", "interval", interval.String())
	if err := runOnce(ctx, cfg, pipe, notifier); err != nil {
		logger.Warn(ctx, "Run failed, waiting for next tick", "error", err.Error())
	}
	for {
		select {
		case <-tick.C:
			if err := runOnce(ctx, cfg, pipe, notifier); err != nil {
				logger.Warn(ctx, "Run failed, waiting for next tick", "error", err.Error())
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			return
		case <-ctx.Done():
			return
		}
	}
}

// runOnce executes one report run, delivers the result and records the outcome.
func runOnce(ctx context.Context, cfg *store.Config, pipe interfaces.Pipeline, notifier interfaces.Notifier) error {
	rep, err := pipe.Run(ctx)
	if err != nil {
		metrics.RecordReport("failed")
		return err
	}

	entry := runlog.RunEntry{
		RunID:         rep.RunID,
		Mode:          cfg.Mode,
		TotalKeywords: rep.TotalKeywords,
		Qualifying:    rep.QualifyingCount,
		Unevaluated:   rep.Unevaluated,
	}

	if rep.QualifyingCount == 0 && !cfg.Report.NotifyEmpty {
		logger.Info(ctx, "No qualifying declines, skipping notification", "run_id", rep.RunID)
		metrics.RecordReport("skipped")
		_ = runlog.Append(entry)
		return nil
	}

	if err := notifier.Notify(ctx, rep); err != nil {
		logger.ErrorWithErr(ctx, "Report notification failed", err, "run_id", rep.RunID)
		metrics.RecordReport("failed")
		entry.DeliveryError = err.Error()
		_ = runlog.Append(entry)
		return err
	}

	entry.Delivered = true
	if cfg.Mode == "DRY_RUN" {
		metrics.RecordReport("dry_run")
	} else {
		metrics.RecordReport("sent")
	}
	_ = runlog.Append(entry)
	return nil
}
