package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// FreezeConfig holds configuration for the freeze command.
type FreezeConfig struct {
	RPCURL     string
	Block      uint64
	In         string
	Out        string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	LogLevel   string

	// Pools limits freezing to these pool addresses. Empty means every pool in the export.
	Pools []string
}

// LoadFreeze merges config file, environment variables, and flags into FreezeConfig.
func LoadFreeze(cfgFile string, flags *pflag.FlagSet) (FreezeConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out":         "./data/snapshots.jsonl",
		"max-retries": 5,
		"retry-delay": 500 * time.Millisecond,
		"timeout":     15 * time.Second,
		"log-level":   "info",
	})
	if err != nil {
		return FreezeConfig{}, err
	}

	cfg := FreezeConfig{
		RPCURL:     v.GetString("rpc"),
		Pools:      getStringSlice(v, "pool"),
		Block:      v.GetUint64("block"),
		In:         v.GetString("in"),
		Out:        v.GetString("out"),
		MaxRetries: v.GetInt("max-retries"),
		RetryDelay: v.GetDuration("retry-delay"),
		Timeout:    v.GetDuration("timeout"),
		LogLevel:   v.GetString("log-level"),
	}
	return cfg, cfg.validate()
}

func (c FreezeConfig) validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("--rpc is required")
	}
	if c.In == "" {
		return fmt.Errorf("--in is required")
	}
	if c.Out == "" {
		return fmt.Errorf("--out is required")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("--max-retries must be >= 1")
	}
	return nil
}
