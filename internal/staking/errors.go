package staking

import "errors"

var (
	ErrInvalidRange      = errors.New("lower tick must be below upper tick")
	ErrTickOutOfRange    = errors.New("tick outside V3 bounds")
	ErrNegativeLiquidity = errors.New("liquidity must be non-negative")
	ErrInvalidTimeRange  = errors.New("incentive start must be before end")
	ErrNilPool           = errors.New("pool is nil")

	ErrMissingPrice     = errors.New("missing price")
	ErrNoIncentives     = errors.New("pool has no incentives")
	ErrZeroSupply       = errors.New("total supply is zero")
	ErrZeroActiveSupply = errors.New("active supply is zero")
	ErrZeroLiquidity    = errors.New("staked liquidity is zero")

	ErrUnknownToken = errors.New("unknown token id")
	ErrOrphanStake  = errors.New("stake has no matching position")
	ErrPoolMismatch = errors.New("position belongs to another pool")
)
