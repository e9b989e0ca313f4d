package report

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stakerScope/internal/model"
	"stakerScope/internal/snapshot"
	"stakerScope/internal/staking"
)

// undefined collects the reason each nil metric could not be computed.
type undefined map[string]string

// value returns v, or records a reason and returns nil when err is set or v is not a
// finite number.
func (u undefined) value(name string, v float64, err error, logger *zap.Logger) *float64 {
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = fmt.Errorf("non-finite value %v", v)
	}
	if err != nil {
		u[name] = err.Error()
		logger.Debug("metric undefined", zap.String("metric", name), zap.Error(err))
		return nil
	}
	return &v
}

func (u undefined) orNil() map[string]string {
	if len(u) == 0 {
		return nil
	}
	return u
}

func poolMetrics(snap *snapshot.Snapshot, logger *zap.Logger) model.PoolMetrics {
	world := snap.World
	reasons := undefined{}

	supply, err := world.TotalSupply()
	totalSupply := reasons.value("total_supply", supply, err, logger)
	rate, err := world.TotalRewardsPerSecond()
	rewards := reasons.value("rewards_per_second", rate, err, logger)
	apr, err := world.APR()
	poolAPR := reasons.value("apr", apr, err, logger)

	return model.PoolMetrics{
		ChainID:          snap.ChainID,
		PoolAddress:      snap.Pool.Hex(),
		BlockNumber:      snap.BlockNumber,
		Timestamp:        world.Now,
		CurrentTick:      int32(world.Pool.CurrentTick),
		Incentives:       len(world.Incentives),
		ActiveIncentives: world.ActiveIncentives(),
		TotalSupply:      totalSupply,
		RewardsPerSecond: rewards,
		APR:              poolAPR,
		Undefined:        reasons.orNil(),
	}
}

func userMetrics(snap *snapshot.Snapshot, user *staking.UserState, logger *zap.Logger) model.UserMetrics {
	logger = logger.With(zap.String("owner", user.Owner.Hex()))
	reasons := undefined{}

	supply, err := user.AllSupply()
	allSupply := reasons.value("all_supply", supply, err, logger)
	active, err := user.AllActiveSupply()
	allActive := reasons.value("all_active_supply", active, err, logger)
	rate, err := user.AllRewardRate()
	rewardRate := reasons.value("reward_rate", rate, err, logger)
	nominal, err := user.AllNominalRewardRate()
	nominalRate := reasons.value("nominal_reward_rate", nominal, err, logger)
	apr, err := user.APR()
	userAPR := reasons.value("apr", apr, err, logger)
	boost, err := user.BoostRatio()
	boostRatio := reasons.value("boost_ratio", boost, err, logger)

	claimable, err := user.AllClaimable()
	if err != nil {
		reasons["claimable"] = err.Error()
		logger.Debug("metric undefined", zap.String("metric", "claimable"), zap.Error(err))
	}

	return model.UserMetrics{
		ChainID:           snap.ChainID,
		PoolAddress:       snap.Pool.Hex(),
		BlockNumber:       snap.BlockNumber,
		Owner:             user.Owner.Hex(),
		Positions:         len(user.Positions),
		InRangePositions:  user.InRangePositions(),
		AllSupply:         allSupply,
		AllActiveSupply:   allActive,
		RewardRate:        rewardRate,
		NominalRewardRate: nominalRate,
		APR:               userAPR,
		BoostRatio:        boostRatio,
		Claimable:         claimableAmounts(claimable, snap.Tokens),
		Undefined:         reasons.orNil(),
	}
}

// claimableAmounts orders claimable totals by token address and attaches token metadata
// when the snapshot carries it.
func claimableAmounts(totals map[common.Address]*big.Int, tokens map[common.Address]model.TokenMeta) []model.ClaimableAmount {
	addrs := make([]common.Address, 0, len(totals))
	for addr := range totals {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })

	out := make([]model.ClaimableAmount, 0, len(addrs))
	for _, addr := range addrs {
		amount := model.ClaimableAmount{
			Token:  addr.Hex(),
			Amount: totals[addr].String(),
		}
		if meta, ok := tokens[addr]; ok {
			amount.Symbol = meta.Symbol
			amount.Decimals = meta.Decimals
			amount.Formatted = formatTokenAmount(totals[addr], meta.Decimals)
		}
		out = append(out, amount)
	}
	return out
}
