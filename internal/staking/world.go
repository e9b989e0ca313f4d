package staking

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
)

// WorldState is the user-independent view of one pool at one block.
type WorldState struct {
	Pool       *Pool
	Now        uint64
	Token0     common.Address
	Token1     common.Address
	Incentives map[IncentiveKey]Incentive
	Prices     PriceTable
}

// Token0Price returns the price of the pool's token0.
func (w *WorldState) Token0Price() (float64, error) {
	return w.Prices.Lookup(w.Token0)
}

// Token1Price returns the price of the pool's token1.
func (w *WorldState) Token1Price() (float64, error) {
	return w.Prices.Lookup(w.Token1)
}

// IncentiveKeys returns the incentive keys in a stable order.
func (w *WorldState) IncentiveKeys() []IncentiveKey {
	return sortedKeys(w.Incentives)
}

// TotalSupply returns the largest staked value across the pool's incentives.
//
// Every incentive is expected to carry the same aggregate stake; the maximum keeps
// partially staked incentives from undercounting TVL.
func (w *WorldState) TotalSupply() (float64, error) {
	if len(w.Incentives) == 0 {
		return math.NaN(), ErrNoIncentives
	}
	price0, err := w.Token0Price()
	if err != nil {
		return math.NaN(), fmt.Errorf("token0: %w", err)
	}
	price1, err := w.Token1Price()
	if err != nil {
		return math.NaN(), fmt.Errorf("token1: %w", err)
	}

	supply := math.Inf(-1)
	for _, key := range w.IncentiveKeys() {
		incentive := w.Incentives[key]
		value := toFloat(incentive.Token0Amount)*price0 + toFloat(incentive.Token1Amount)*price1
		supply = max(supply, value)
	}
	return supply, nil
}

// TotalRewardsPerSecond sums the priced reward rate of incentives that are in their
// time range and have active liquidity.
func (w *WorldState) TotalRewardsPerSecond() (float64, error) {
	var total float64
	for _, key := range w.IncentiveKeys() {
		incentive := w.Incentives[key]
		if !incentive.Realized(key, w.Now) {
			continue
		}
		price, err := w.Prices.Lookup(key.RewardToken)
		if err != nil {
			return math.NaN(), fmt.Errorf("incentive %s: %w", key, err)
		}
		total += price * toFloat(incentive.RewardRate)
	}
	return total, nil
}

// APR returns the pool-wide annualized reward yield.
func (w *WorldState) APR() (float64, error) {
	rewards, err := w.TotalRewardsPerSecond()
	if err != nil {
		return math.NaN(), err
	}
	supply, err := w.TotalSupply()
	if err != nil {
		return math.NaN(), err
	}
	return annualize(rewards, supply, ErrZeroSupply)
}

// ActiveIncentives counts incentives whose nominal rate is realized at Now.
func (w *WorldState) ActiveIncentives() int {
	var n int
	for _, key := range w.IncentiveKeys() {
		if w.Incentives[key].Realized(key, w.Now) {
			n++
		}
	}
	return n
}
