package storage

import (
	"context"

	"stakerScope/internal/model"
)

// Sink receives evaluated metric records.
type Sink interface {
	PutPoolMetrics(ctx context.Context, metrics []model.PoolMetrics) error
	PutUserMetrics(ctx context.Context, metrics []model.UserMetrics) error
}

// Multi writes to every sink in order and stops at the first error.
type Multi []Sink

func (m Multi) PutPoolMetrics(ctx context.Context, metrics []model.PoolMetrics) error {
	for _, sink := range m {
		if err := sink.PutPoolMetrics(ctx, metrics); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) PutUserMetrics(ctx context.Context, metrics []model.UserMetrics) error {
	for _, sink := range m {
		if err := sink.PutUserMetrics(ctx, metrics); err != nil {
			return err
		}
	}
	return nil
}
