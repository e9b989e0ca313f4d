package staking

import "math"

// SecondsPerYear is the annualization factor used by every APR.
const SecondsPerYear = 365 * 24 * 60 * 60

// BoostMultiplier scales the boosted/raw liquidity ratio into a boost factor.
const BoostMultiplier = 3

const tickBase = 1.0001

// MinTick and MaxTick bound the ticks a V3 pool can reach.
const (
	MinTick Tick = -887272
	MaxTick Tick = 887272
)

// Tick is a discrete price index of a V3 pool.
type Tick int32

// Price returns 1.0001^tick.
func (t Tick) Price() float64 {
	return math.Pow(tickBase, float64(t))
}

// Valid reports whether t lies in [MinTick, MaxTick].
func (t Tick) Valid() bool {
	return t >= MinTick && t <= MaxTick
}

// SqrtPrice returns the square root of Price.
func (t Tick) SqrtPrice() float64 {
	return math.Sqrt(t.Price())
}
