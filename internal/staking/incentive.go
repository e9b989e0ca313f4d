package staking

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// IncentiveKey identifies a reward program.
type IncentiveKey struct {
	RewardToken    common.Address
	StartTimestamp uint64
	EndTimestamp   uint64
}

// NewIncentiveKey validates start < end.
func NewIncentiveKey(rewardToken common.Address, start, end uint64) (IncentiveKey, error) {
	if start >= end {
		return IncentiveKey{}, fmt.Errorf("%w: start=%d end=%d", ErrInvalidTimeRange, start, end)
	}
	return IncentiveKey{RewardToken: rewardToken, StartTimestamp: start, EndTimestamp: end}, nil
}

// InTimeRange reports whether now lies in [start, end).
func (k IncentiveKey) InTimeRange(now uint64) bool {
	return now >= k.StartTimestamp && now < k.EndTimestamp
}

func (k IncentiveKey) String() string {
	return fmt.Sprintf("%s:%d-%d", k.RewardToken.Hex(), k.StartTimestamp, k.EndTimestamp)
}

func (k IncentiveKey) less(other IncentiveKey) bool {
	if c := bytes.Compare(k.RewardToken[:], other.RewardToken[:]); c != 0 {
		return c < 0
	}
	if k.StartTimestamp != other.StartTimestamp {
		return k.StartTimestamp < other.StartTimestamp
	}
	return k.EndTimestamp < other.EndTimestamp
}

// Incentive is the pool-level state of one reward program.
//
// RewardRate is nominal: it is reported even when the program is not paying out.
type Incentive struct {
	Token0Amount    *big.Int
	Token1Amount    *big.Int
	TokenUnreleased *big.Int
	RewardRate      *big.Int
	IsEmpty         bool
}

// Realized reports whether the nominal rate is actually being emitted at now.
func (i Incentive) Realized(key IncentiveKey, now uint64) bool {
	return key.InTimeRange(now) && !i.IsEmpty
}

// IncentiveStake is one position's participation in one incentive.
type IncentiveStake struct {
	Liquidity       *big.Int
	BoostLiquidity  *big.Int
	RewardRate      *big.Int
	UnclaimedReward *big.Int
}

// BoostFactor returns BoostLiquidity/Liquidity scaled by BoostMultiplier.
func (s IncentiveStake) BoostFactor() (float64, error) {
	return boostRatio(s.BoostLiquidity, s.Liquidity)
}

func sortedKeys[V any](m map[IncentiveKey]V) []IncentiveKey {
	keys := make([]IncentiveKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}
