package staking

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func toFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(value).Float64()
	return f
}

func boostRatio(boost, liquidity *big.Int) (float64, error) {
	if liquidity == nil || liquidity.Sign() == 0 {
		return math.NaN(), ErrZeroLiquidity
	}
	if boost == nil {
		boost = new(big.Int)
	}
	ratio := new(big.Rat).SetFrac(boost, liquidity)
	ratio.Mul(ratio, big.NewRat(BoostMultiplier, 1))
	f, _ := ratio.Float64()
	return f, nil
}

// addAmount adds amount to totals[token], starting from zero when the key is absent.
func addAmount(totals map[common.Address]*big.Int, token common.Address, amount *big.Int) {
	current, ok := totals[token]
	if !ok {
		current = new(big.Int)
		totals[token] = current
	}
	if amount != nil {
		current.Add(current, amount)
	}
}

func annualize(ratePerSecond, supply float64, zeroErr error) (float64, error) {
	if supply == 0 {
		return math.NaN(), zeroErr
	}
	return ratePerSecond / supply * SecondsPerYear, nil
}
