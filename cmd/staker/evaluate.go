package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakerScope/internal/config"
	"stakerScope/internal/report"
	"stakerScope/internal/snapshot"
	"stakerScope/internal/storage"
	"stakerScope/internal/storage/postgres"
)

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadEvaluate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots, stats, err := snapshot.LoadFile(cfg.In, logger)
	if err != nil {
		return err
	}
	logger.Info("snapshots loaded",
		zap.String("input", cfg.In),
		zap.Int("total", stats.Total),
		zap.Int("decoded", stats.Decoded),
		zap.Int("failed", stats.Failed),
	)

	var sinks storage.Multi
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN, cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if cfg.EnsureSchema {
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
		}
		sinks = append(sinks, store)
	}

	logger.Info("evaluate start",
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Int("workers", cfg.Workers),
		zap.Uint64("now", cfg.Now),
	)

	evaluator := report.NewEvaluator(report.Config{Workers: cfg.Workers, Now: cfg.Now}, logger)
	result, err := evaluator.Evaluate(ctx, snapshots)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if err := sinks.PutPoolMetrics(ctx, result.Pools); err != nil {
		return fmt.Errorf("write pool metrics: %w", err)
	}
	if err := sinks.PutUserMetrics(ctx, result.Users); err != nil {
		return fmt.Errorf("write user metrics: %w", err)
	}
	return nil
}

// redactDSN hides credentials while keeping host and database visible in logs.
func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.Host == "" {
		return "***"
	}
	parsed.RawQuery = ""
	return parsed.Redacted()
}
