package report

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"stakerScope/internal/model"
	"stakerScope/internal/snapshot"
)

// Config controls evaluation behavior.
type Config struct {
	Workers int

	// Now overrides every snapshot's timestamp when non-zero.
	Now uint64
}

// Result holds metric records in snapshot order.
type Result struct {
	Pools []model.PoolMetrics
	Users []model.UserMetrics
}

// Evaluator turns decoded snapshots into pool and user metric records.
type Evaluator struct {
	cfg    Config
	logger *zap.Logger
}

// NewEvaluator returns an Evaluator. Workers defaults to the number of CPUs.
func NewEvaluator(cfg Config, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Evaluator{cfg: cfg, logger: logger}
}

type evaluation struct {
	pool  model.PoolMetrics
	users []model.UserMetrics
	err   error
}

// Evaluate computes metrics for every snapshot. Snapshots are independent and are
// evaluated concurrently; output order follows input order.
func (e *Evaluator) Evaluate(ctx context.Context, snapshots []*snapshot.Snapshot) (Result, error) {
	if len(snapshots) == 0 {
		return Result{}, nil
	}

	pool, err := ants.NewPool(min(e.cfg.Workers, len(snapshots)))
	if err != nil {
		return Result{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]evaluation, len(snapshots))
	wg := &sync.WaitGroup{}
	for i, snap := range snapshots {
		if err := ctx.Err(); err != nil {
			break
		}
		i, snap := i, snap
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			results[i] = e.evaluate(snap)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return Result{}, fmt.Errorf("submit snapshot %d: %w", i, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var out Result
	for i, res := range results {
		if res.err != nil {
			return Result{}, fmt.Errorf("snapshot %d: %w", i, res.err)
		}
		out.Pools = append(out.Pools, res.pool)
		out.Users = append(out.Users, res.users...)
	}

	e.logger.Info("evaluate complete",
		zap.Int("snapshots", len(snapshots)),
		zap.Int("pools", len(out.Pools)),
		zap.Int("users", len(out.Users)),
	)
	return out, nil
}

func (e *Evaluator) evaluate(snap *snapshot.Snapshot) evaluation {
	if snap == nil || snap.World == nil {
		return evaluation{err: fmt.Errorf("snapshot is nil")}
	}
	if e.cfg.Now != 0 {
		moved, err := snap.At(e.cfg.Now)
		if err != nil {
			return evaluation{err: err}
		}
		snap = moved
	}

	logger := e.logger.With(
		zap.String("pool", snap.Pool.Hex()),
		zap.Uint64("block", snap.BlockNumber),
	)

	res := evaluation{
		pool:  poolMetrics(snap, logger),
		users: make([]model.UserMetrics, 0, len(snap.Users)),
	}
	for _, user := range snap.Users {
		res.users = append(res.users, userMetrics(snap, user, logger))
	}
	return res
}
