package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakerScope/internal/chain"
	"stakerScope/internal/config"
	"stakerScope/internal/model"
	"stakerScope/internal/snapshot"
	"stakerScope/internal/storage"
)

func runFreeze(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFreeze(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pools, err := snapshot.ParseAddresses("pool", cfg.Pools)
	if err != nil {
		return err
	}

	exports, stats, err := snapshot.ReadRecordsFile(cfg.In, logger)
	if err != nil {
		return err
	}
	exports = filterPools(exports, pools)
	if len(exports) == 0 {
		return fmt.Errorf("no exports to freeze in %s", cfg.In)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	freezer := snapshot.NewFreezer(snapshot.FreezeConfig{
		Block:      cfg.Block,
		MaxRetries: uint(cfg.MaxRetries),
		RetryDelay: cfg.RetryDelay,
		Timeout:    cfg.Timeout,
	}, chainClient, logger)

	logger.Info("freeze start",
		zap.String("input", cfg.In),
		zap.String("out", cfg.Out),
		zap.Uint64("block", cfg.Block),
		zap.Int("exports", len(exports)),
		zap.Int("skipped_lines", stats.Failed),
	)

	frozen := make([]model.PoolSnapshot, 0, len(exports))
	var failed int
	for _, export := range exports {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := freezer.Freeze(ctx, export)
		if err != nil {
			failed++
			logger.Warn("freeze export", zap.String("pool", export.Pool), zap.Error(err))
			continue
		}
		frozen = append(frozen, record)
	}

	if len(frozen) == 0 {
		return fmt.Errorf("no export could be frozen (%d failed)", failed)
	}
	if err := storage.NewJsonlStorage(cfg.Out).WriteSnapshots(frozen); err != nil {
		return err
	}

	logger.Info("freeze complete",
		zap.Int("frozen", len(frozen)),
		zap.Int("failed", failed),
	)
	return nil
}

func filterPools(exports []model.PoolSnapshot, pools []common.Address) []model.PoolSnapshot {
	if len(pools) == 0 {
		return exports
	}
	wanted := make(map[common.Address]struct{}, len(pools))
	for _, pool := range pools {
		wanted[pool] = struct{}{}
	}

	out := make([]model.PoolSnapshot, 0, len(exports))
	for _, export := range exports {
		if !common.IsHexAddress(export.Pool) {
			continue
		}
		if _, ok := wanted[common.HexToAddress(export.Pool)]; ok {
			out = append(out, export)
		}
	}
	return out
}
