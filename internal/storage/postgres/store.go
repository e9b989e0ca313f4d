package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stakerScope/internal/model"
	"stakerScope/internal/storage"
)

const defaultBatchSize = 500

var _ storage.Sink = (*Store)(nil)

// Store provides Postgres persistence for staking metrics.
type Store struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewStore(ctx context.Context, dsn string, batchSize int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Store{pool: pool, batchSize: batchSize}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the metric tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *Store) PutPoolMetrics(ctx context.Context, metrics []model.PoolMetrics) error {
	return s.UpsertPoolMetrics(ctx, metrics)
}

func (s *Store) PutUserMetrics(ctx context.Context, metrics []model.UserMetrics) error {
	return s.UpsertUserMetrics(ctx, metrics)
}

// UpsertPoolMetrics inserts or updates pool metrics keyed by chain, pool and block.
func (s *Store) UpsertPoolMetrics(ctx context.Context, metrics []model.PoolMetrics) error {
	for _, part := range chunks(metrics, s.batchSize) {
		batch := &pgx.Batch{}
		for _, m := range part {
			args, err := poolMetricArgs(m)
			if err != nil {
				return err
			}
			batch.Queue(upsertPoolMetricsSQL, args...)
		}
		if err := s.send(ctx, batch, len(part)); err != nil {
			return fmt.Errorf("upsert pool metrics: %w", err)
		}
	}
	return nil
}

// UpsertUserMetrics inserts or updates user metrics keyed by chain, pool, block and owner.
func (s *Store) UpsertUserMetrics(ctx context.Context, metrics []model.UserMetrics) error {
	for _, part := range chunks(metrics, s.batchSize) {
		batch := &pgx.Batch{}
		for _, m := range part {
			args, err := userMetricArgs(m)
			if err != nil {
				return err
			}
			batch.Queue(upsertUserMetricsSQL, args...)
		}
		if err := s.send(ctx, batch, len(part)); err != nil {
			return fmt.Errorf("upsert user metrics: %w", err)
		}
	}
	return nil
}

func (s *Store) send(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func poolMetricArgs(m model.PoolMetrics) ([]interface{}, error) {
	undefined, err := jsonColumn(m.Undefined, len(m.Undefined))
	if err != nil {
		return nil, fmt.Errorf("encode undefined: %w", err)
	}
	return []interface{}{
		int64(m.ChainID),
		m.PoolAddress,
		int64(m.BlockNumber),
		int64(m.Timestamp),
		m.CurrentTick,
		m.Incentives,
		m.ActiveIncentives,
		m.TotalSupply,
		m.RewardsPerSecond,
		m.APR,
		undefined,
	}, nil
}

func userMetricArgs(m model.UserMetrics) ([]interface{}, error) {
	claimable, err := jsonColumn(m.Claimable, len(m.Claimable))
	if err != nil {
		return nil, fmt.Errorf("encode claimable: %w", err)
	}
	undefined, err := jsonColumn(m.Undefined, len(m.Undefined))
	if err != nil {
		return nil, fmt.Errorf("encode undefined: %w", err)
	}
	return []interface{}{
		int64(m.ChainID),
		m.PoolAddress,
		int64(m.BlockNumber),
		m.Owner,
		m.Positions,
		m.InRangePositions,
		m.AllSupply,
		m.AllActiveSupply,
		m.RewardRate,
		m.NominalRewardRate,
		m.APR,
		m.BoostRatio,
		claimable,
		undefined,
	}, nil
}

// jsonColumn encodes v for a jsonb column. An empty value (n == 0) becomes SQL NULL.
func jsonColumn(v interface{}, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

func chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = defaultBatchSize
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
