package staking

import (
	"fmt"
	"math/big"
)

// Pool carries the pool state shared by all positions of one snapshot.
type Pool struct {
	CurrentTick Tick
}

// Position is a liquidity range held by a user in a pool.
type Position struct {
	liquidity *big.Int
	lowerTick Tick
	upperTick Tick
	pool      *Pool
}

// NewPosition validates and builds a Position. The liquidity value is copied.
func NewPosition(pool *Pool, liquidity *big.Int, lowerTick, upperTick Tick) (*Position, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if !pool.CurrentTick.Valid() {
		return nil, fmt.Errorf("%w: current=%d", ErrTickOutOfRange, pool.CurrentTick)
	}
	if !lowerTick.Valid() || !upperTick.Valid() {
		return nil, fmt.Errorf("%w: lower=%d upper=%d", ErrTickOutOfRange, lowerTick, upperTick)
	}
	if lowerTick >= upperTick {
		return nil, fmt.Errorf("%w: lower=%d upper=%d", ErrInvalidRange, lowerTick, upperTick)
	}
	if liquidity == nil {
		liquidity = new(big.Int)
	}
	if liquidity.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeLiquidity, liquidity)
	}
	return &Position{
		liquidity: new(big.Int).Set(liquidity),
		lowerTick: lowerTick,
		upperTick: upperTick,
		pool:      pool,
	}, nil
}

// Liquidity returns a copy of the position's liquidity.
func (p *Position) Liquidity() *big.Int { return new(big.Int).Set(p.liquidity) }

// LowerTick returns the inclusive lower bound of the range.
func (p *Position) LowerTick() Tick { return p.lowerTick }

// UpperTick returns the exclusive upper bound of the range.
func (p *Position) UpperTick() Tick { return p.upperTick }

// Pool returns the pool the position belongs to.
func (p *Position) Pool() *Pool { return p.pool }

// Token0Amount returns the amount of token0 held by the position at the current tick.
//
// Both bounds are clamped with max(current, bound).
func (p *Position) Token0Amount() float64 {
	current := p.pool.CurrentTick
	lower := max(current, p.lowerTick).SqrtPrice()
	upper := max(current, p.upperTick).SqrtPrice()
	return toFloat(p.liquidity) * (upper - lower) / (upper * lower)
}

// Token1Amount returns the amount of token1 held by the position at the current tick.
//
// Both bounds are clamped with min(current, bound).
func (p *Position) Token1Amount() float64 {
	current := p.pool.CurrentTick
	lower := min(current, p.lowerTick).SqrtPrice()
	upper := min(current, p.upperTick).SqrtPrice()
	return toFloat(p.liquidity) * (upper - lower)
}

// InPriceRange reports whether lowerTick <= current < upperTick.
func (p *Position) InPriceRange() bool {
	current := p.pool.CurrentTick
	return current >= p.lowerTick && current < p.upperTick
}
