package staking

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// TokenID is the id of a position NFT.
type TokenID uint64

// UserState is one user's view of a pool. It reads shared pool data through World.
type UserState struct {
	World     *WorldState
	Owner     common.Address
	Positions map[TokenID]*Position
	Stakes    map[TokenID]map[IncentiveKey]IncentiveStake
}

// NewUserState builds a UserState after checking that every stake has a position and
// every position belongs to the world's pool.
func NewUserState(world *WorldState, owner common.Address, positions map[TokenID]*Position, stakes map[TokenID]map[IncentiveKey]IncentiveStake) (*UserState, error) {
	if world == nil || world.Pool == nil {
		return nil, ErrNilPool
	}
	for id, position := range positions {
		if position == nil || position.Pool() != world.Pool {
			return nil, fmt.Errorf("%w: token %d", ErrPoolMismatch, id)
		}
	}
	for id := range stakes {
		if _, ok := positions[id]; !ok {
			return nil, fmt.Errorf("%w: token %d", ErrOrphanStake, id)
		}
	}
	if positions == nil {
		positions = map[TokenID]*Position{}
	}
	if stakes == nil {
		stakes = map[TokenID]map[IncentiveKey]IncentiveStake{}
	}
	return &UserState{World: world, Owner: owner, Positions: positions, Stakes: stakes}, nil
}

// TokenIDs returns the user's position ids in ascending order.
func (u *UserState) TokenIDs() []TokenID {
	ids := make([]TokenID, 0, len(u.Positions))
	for id := range u.Positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (u *UserState) position(id TokenID) (*Position, error) {
	position, ok := u.Positions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownToken, id)
	}
	return position, nil
}

// IsStakeActive reports whether the stake of id in key is earning at World.Now.
func (u *UserState) IsStakeActive(key IncentiveKey, id TokenID) (bool, error) {
	position, err := u.position(id)
	if err != nil {
		return false, err
	}
	return key.InTimeRange(u.World.Now) && position.InPriceRange(), nil
}

// PositionValue returns the priced value of both token amounts of a position.
func (u *UserState) PositionValue(id TokenID) (float64, error) {
	position, err := u.position(id)
	if err != nil {
		return math.NaN(), err
	}
	price0, err := u.World.Token0Price()
	if err != nil {
		return math.NaN(), fmt.Errorf("token0: %w", err)
	}
	price1, err := u.World.Token1Price()
	if err != nil {
		return math.NaN(), fmt.Errorf("token1: %w", err)
	}
	return position.Token0Amount()*price0 + position.Token1Amount()*price1, nil
}

// ActiveSupply returns the full position value if any of its stakes is active, else 0.
func (u *UserState) ActiveSupply(id TokenID) (float64, error) {
	if _, err := u.position(id); err != nil {
		return math.NaN(), err
	}
	for _, key := range sortedKeys(u.Stakes[id]) {
		active, err := u.IsStakeActive(key, id)
		if err != nil {
			return math.NaN(), err
		}
		if active {
			return u.PositionValue(id)
		}
	}
	return 0, nil
}

// RewardRate returns the priced reward rate realized by a position's active stakes.
func (u *UserState) RewardRate(id TokenID) (float64, error) {
	return u.rewardRate(id, true)
}

// NominalRewardRate returns the priced rate the position would earn if every stake
// were active.
func (u *UserState) NominalRewardRate(id TokenID) (float64, error) {
	return u.rewardRate(id, false)
}

func (u *UserState) rewardRate(id TokenID, activeOnly bool) (float64, error) {
	if _, err := u.position(id); err != nil {
		return math.NaN(), err
	}
	var total float64
	stakes := u.Stakes[id]
	for _, key := range sortedKeys(stakes) {
		if activeOnly {
			active, err := u.IsStakeActive(key, id)
			if err != nil {
				return math.NaN(), err
			}
			if !active {
				continue
			}
		}
		price, err := u.World.Prices.Lookup(key.RewardToken)
		if err != nil {
			return math.NaN(), fmt.Errorf("incentive %s: %w", key, err)
		}
		total += price * toFloat(stakes[key].RewardRate)
	}
	return total, nil
}

// Claimable sums unclaimed rewards of a position by reward token, active or not.
func (u *UserState) Claimable(id TokenID) (map[common.Address]*big.Int, error) {
	if _, err := u.position(id); err != nil {
		return nil, err
	}
	totals := make(map[common.Address]*big.Int)
	for key, stake := range u.Stakes[id] {
		addAmount(totals, key.RewardToken, stake.UnclaimedReward)
	}
	return totals, nil
}

// AllSupply sums PositionValue over every position of the user.
func (u *UserState) AllSupply() (float64, error) {
	return u.sum(u.PositionValue)
}

// AllActiveSupply sums ActiveSupply over every position of the user.
func (u *UserState) AllActiveSupply() (float64, error) {
	return u.sum(u.ActiveSupply)
}

// AllRewardRate sums RewardRate over every position of the user.
func (u *UserState) AllRewardRate() (float64, error) {
	return u.sum(u.RewardRate)
}

// AllNominalRewardRate sums NominalRewardRate over every position of the user.
func (u *UserState) AllNominalRewardRate() (float64, error) {
	return u.sum(u.NominalRewardRate)
}

func (u *UserState) sum(metric func(TokenID) (float64, error)) (float64, error) {
	var total float64
	for _, id := range u.TokenIDs() {
		value, err := metric(id)
		if err != nil {
			return math.NaN(), err
		}
		total += value
	}
	return total, nil
}

// AllClaimable merges Claimable across positions by per-token summation.
func (u *UserState) AllClaimable() (map[common.Address]*big.Int, error) {
	totals := make(map[common.Address]*big.Int)
	for _, id := range u.TokenIDs() {
		claimable, err := u.Claimable(id)
		if err != nil {
			return nil, err
		}
		for token, amount := range claimable {
			addAmount(totals, token, amount)
		}
	}
	return totals, nil
}

// APR returns the user's annualized yield on active supply.
func (u *UserState) APR() (float64, error) {
	rate, err := u.AllRewardRate()
	if err != nil {
		return math.NaN(), err
	}
	active, err := u.AllActiveSupply()
	if err != nil {
		return math.NaN(), err
	}
	return annualize(rate, active, ErrZeroActiveSupply)
}

// BoostRatio returns the liquidity-weighted boost over every stake of every position.
func (u *UserState) BoostRatio() (float64, error) {
	liquidity := new(big.Int)
	boost := new(big.Int)
	for _, id := range u.TokenIDs() {
		for _, stake := range u.Stakes[id] {
			if stake.Liquidity != nil {
				liquidity.Add(liquidity, stake.Liquidity)
			}
			if stake.BoostLiquidity != nil {
				boost.Add(boost, stake.BoostLiquidity)
			}
		}
	}
	return boostRatio(boost, liquidity)
}

// InRangePositions counts the user's positions that are inside the current price range.
func (u *UserState) InRangePositions() int {
	var n int
	for _, id := range u.TokenIDs() {
		if u.Positions[id].InPriceRange() {
			n++
		}
	}
	return n
}
