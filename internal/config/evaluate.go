package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// EvaluateConfig holds configuration for the evaluate command.
type EvaluateConfig struct {
	In           string
	Out          string
	PGDSN        string
	EnsureSchema bool
	Workers      int
	BatchSize    int
	LogLevel     string

	// Now overrides snapshot timestamps when non-zero.
	Now uint64
}

// LoadEvaluate merges config file, environment variables, and flags into EvaluateConfig.
func LoadEvaluate(cfgFile string, flags *pflag.FlagSet) (EvaluateConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out":           "./data/staking_metrics.jsonl",
		"workers":       4,
		"batch-size":    500,
		"ensure-schema": false,
		"log-level":     "info",
	})
	if err != nil {
		return EvaluateConfig{}, err
	}

	now, err := ParseTimestamp(v.GetString("now"))
	if err != nil {
		return EvaluateConfig{}, fmt.Errorf("parse now: %w", err)
	}

	cfg := EvaluateConfig{
		In:           v.GetString("in"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		EnsureSchema: v.GetBool("ensure-schema"),
		Workers:      v.GetInt("workers"),
		BatchSize:    v.GetInt("batch-size"),
		LogLevel:     v.GetString("log-level"),
		Now:          now,
	}
	return cfg, cfg.validate()
}

func (c EvaluateConfig) validate() error {
	if c.In == "" {
		return fmt.Errorf("--in is required")
	}
	if c.Out == "" && c.PGDSN == "" {
		return fmt.Errorf("--out or --pg-dsn is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("--batch-size must be >= 0")
	}
	return nil
}
