package staking

import (
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = common.HexToAddress("0x00000000000000000000000000000000000000e0")

func stake(liquidity, boost, rate, unclaimed int64) IncentiveStake {
	return IncentiveStake{
		Liquidity:       big.NewInt(liquidity),
		BoostLiquidity:  big.NewInt(boost),
		RewardRate:      big.NewInt(rate),
		UnclaimedReward: big.NewInt(unclaimed),
	}
}

// newUser builds a user with position 1 in range and position 2 above range.
func newUser(t *testing.T) (*UserState, IncentiveKey) {
	t.Helper()
	world, key := newWorld(t)

	inRange, err := NewPosition(world.Pool, big.NewInt(1_000_000), 0, 100)
	require.NoError(t, err)
	outOfRange, err := NewPosition(world.Pool, big.NewInt(1_000_000), 100, 200)
	require.NoError(t, err)

	user, err := NewUserState(world, owner,
		map[TokenID]*Position{1: inRange, 2: outOfRange},
		map[TokenID]map[IncentiveKey]IncentiveStake{
			1: {key: stake(10, 20, 4, 7)},
			2: {key: stake(10, 10, 6, 3)},
		},
	)
	require.NoError(t, err)
	return user, key
}

func TestNewUserStateRejectsOrphanStake(t *testing.T) {
	world, key := newWorld(t)
	_, err := NewUserState(world, owner, map[TokenID]*Position{},
		map[TokenID]map[IncentiveKey]IncentiveStake{9: {key: stake(1, 1, 1, 1)}})
	assert.ErrorIs(t, err, ErrOrphanStake)
}

func TestNewUserStateRejectsForeignPool(t *testing.T) {
	world, _ := newWorld(t)
	position, err := NewPosition(&Pool{CurrentTick: 50}, big.NewInt(1), 0, 100)
	require.NoError(t, err)

	_, err = NewUserState(world, owner, map[TokenID]*Position{1: position}, nil)
	assert.ErrorIs(t, err, ErrPoolMismatch)
}

func TestUserStateStakeActivity(t *testing.T) {
	user, key := newUser(t)

	active, err := user.IsStakeActive(key, 1)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = user.IsStakeActive(key, 2)
	require.NoError(t, err)
	assert.False(t, active)

	user.World.Now = 1000
	active, err = user.IsStakeActive(key, 1)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = user.IsStakeActive(key, 42)
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestUserStatePositionValue(t *testing.T) {
	user, _ := newUser(t)
	position := user.Positions[1]

	value, err := user.PositionValue(1)
	require.NoError(t, err)
	assert.InEpsilon(t, position.Token0Amount()*1+position.Token1Amount()*2, value, 1e-12)
}

func TestUserStateRewardRateCountsActiveStakesOnly(t *testing.T) {
	user, _ := newUser(t)

	rate, err := user.RewardRate(1)
	require.NoError(t, err)
	assert.Equal(t, 20.0, rate)

	rate, err = user.RewardRate(2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)

	nominal, err := user.NominalRewardRate(2)
	require.NoError(t, err)
	assert.Equal(t, 30.0, nominal)

	all, err := user.AllRewardRate()
	require.NoError(t, err)
	assert.Equal(t, 20.0, all)

	allNominal, err := user.AllNominalRewardRate()
	require.NoError(t, err)
	assert.Equal(t, 50.0, allNominal)
}

func TestUserStateActiveSupplyIsBinary(t *testing.T) {
	user, _ := newUser(t)

	value, err := user.PositionValue(1)
	require.NoError(t, err)
	active, err := user.ActiveSupply(1)
	require.NoError(t, err)
	assert.Equal(t, value, active)

	active, err = user.ActiveSupply(2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, active)

	all, err := user.AllSupply()
	require.NoError(t, err)
	other, err := user.PositionValue(2)
	require.NoError(t, err)
	assert.InEpsilon(t, value+other, all, 1e-12)

	allActive, err := user.AllActiveSupply()
	require.NoError(t, err)
	assert.Equal(t, value, allActive)
}

func TestUserStateClaimableIgnoresActivity(t *testing.T) {
	user, key := newUser(t)
	expired := mustKey(t, tokenB, 0, 100)
	user.Stakes[2][expired] = stake(10, 10, 1, 5)

	claimable, err := user.Claimable(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claimable[key.RewardToken].Int64())
	assert.Equal(t, int64(5), claimable[tokenB].Int64())

	all, err := user.AllClaimable()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(10), all[tokenA].Int64())
	assert.Equal(t, int64(5), all[tokenB].Int64())
}

func TestUserStateAPR(t *testing.T) {
	user, _ := newUser(t)

	active, err := user.AllActiveSupply()
	require.NoError(t, err)

	apr, err := user.APR()
	require.NoError(t, err)
	assert.InEpsilon(t, 20/active*SecondsPerYear, apr, 1e-12)
}

func TestUserStateAPRUndefinedOnZeroActiveSupply(t *testing.T) {
	world, key := newWorld(t)
	empty, err := NewPosition(world.Pool, big.NewInt(0), 0, 100)
	require.NoError(t, err)
	user, err := NewUserState(world, owner,
		map[TokenID]*Position{1: empty},
		map[TokenID]map[IncentiveKey]IncentiveStake{1: {key: stake(0, 0, 10, 0)}},
	)
	require.NoError(t, err)

	rate, err := user.AllRewardRate()
	require.NoError(t, err)
	assert.Equal(t, 50.0, rate)

	apr, err := user.APR()
	assert.ErrorIs(t, err, ErrZeroActiveSupply)
	assert.True(t, math.IsNaN(apr))
}

func TestUserStateBoostRatio(t *testing.T) {
	user, _ := newUser(t)

	ratio, err := user.BoostRatio()
	require.NoError(t, err)
	assert.Equal(t, 4.5, ratio)

	single, err := user.Stakes[1][user.World.IncentiveKeys()[0]].BoostFactor()
	require.NoError(t, err)
	assert.Equal(t, 6.0, single)
}

func TestUserStateBoostRatioWithoutStakes(t *testing.T) {
	world, _ := newWorld(t)
	user, err := NewUserState(world, owner, nil, nil)
	require.NoError(t, err)

	ratio, err := user.BoostRatio()
	assert.ErrorIs(t, err, ErrZeroLiquidity)
	assert.True(t, math.IsNaN(ratio))
}

func TestUserStateMissingRewardPrice(t *testing.T) {
	user, _ := newUser(t)
	delete(user.World.Prices, tokenA)

	_, err := user.RewardRate(1)
	assert.ErrorIs(t, err, ErrMissingPrice)

	_, err = user.APR()
	assert.ErrorIs(t, err, ErrMissingPrice)
}

func TestUserStateIdempotent(t *testing.T) {
	user, _ := newUser(t)

	first, err := user.APR()
	require.NoError(t, err)
	firstBoost, err := user.BoostRatio()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		apr, err := user.APR()
		require.NoError(t, err)
		assert.Equal(t, first, apr)

		boost, err := user.BoostRatio()
		require.NoError(t, err)
		assert.Equal(t, firstBoost, boost)
	}
	assert.Equal(t, 1, user.InRangePositions())
}
