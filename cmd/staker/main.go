package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// .env is optional; the process environment still applies without it.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "staker",
		Short:        "V3 staking valuation: TVL, reward rate, APR and boost per pool and user",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate pool snapshots into staking metrics",
		RunE:  runEvaluate,
	}

	evaluateCmd.Flags().String("in", "", "input snapshot JSONL")
	evaluateCmd.Flags().String("out", "./data/staking_metrics.jsonl", "output metrics JSONL (empty disables)")
	evaluateCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	evaluateCmd.Flags().Bool("ensure-schema", false, "create metric tables if missing")
	evaluateCmd.Flags().Int("workers", 4, "concurrent snapshot evaluations")
	evaluateCmd.Flags().Int("batch-size", 500, "batch size for DB writes")
	evaluateCmd.Flags().String("now", "", "evaluate at this timestamp instead of the snapshot's (unix seconds or RFC3339)")
	evaluateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(evaluateCmd)

	freezeCmd := &cobra.Command{
		Use:   "freeze",
		Short: "Stamp chain state at one block onto an indexer export",
		RunE:  runFreeze,
	}

	freezeCmd.Flags().String("rpc", "", "RPC URL (archive node for historical blocks)")
	freezeCmd.Flags().StringSlice("pool", nil, "only freeze these pools (comma-separated)")
	freezeCmd.Flags().Uint64("block", 0, "block to pin, 0 means the export's block or latest")
	freezeCmd.Flags().String("in", "", "input export JSONL")
	freezeCmd.Flags().String("out", "./data/snapshots.jsonl", "output snapshot JSONL")
	freezeCmd.Flags().Int("max-retries", 5, "maximum attempts per RPC read")
	freezeCmd.Flags().Duration("retry-delay", 500*time.Millisecond, "initial retry delay")
	freezeCmd.Flags().Duration("timeout", 15*time.Second, "timeout per RPC read")
	freezeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(freezeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
