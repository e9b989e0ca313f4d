package staking

import (
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	token0 = common.HexToAddress("0x0000000000000000000000000000000000000a00")
	token1 = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	tokenA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func mustKey(t *testing.T, token common.Address, start, end uint64) IncentiveKey {
	t.Helper()
	key, err := NewIncentiveKey(token, start, end)
	require.NoError(t, err)
	return key
}

func newWorld(t *testing.T) (*WorldState, IncentiveKey) {
	t.Helper()
	key := mustKey(t, tokenA, 0, 1000)
	world := &WorldState{
		Pool:   &Pool{CurrentTick: 50},
		Now:    500,
		Token0: token0,
		Token1: token1,
		Incentives: map[IncentiveKey]Incentive{
			key: {
				Token0Amount:    big.NewInt(100),
				Token1Amount:    big.NewInt(200),
				TokenUnreleased: big.NewInt(10_000),
				RewardRate:      big.NewInt(10),
			},
		},
		Prices: PriceTable{token0: 1, token1: 2, tokenA: 5},
	}
	return world, key
}

func TestNewIncentiveKeyRejectsInvertedRange(t *testing.T) {
	_, err := NewIncentiveKey(tokenA, 100, 100)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestIncentiveKeyInTimeRangeHalfOpen(t *testing.T) {
	key := mustKey(t, tokenA, 100, 200)
	assert.False(t, key.InTimeRange(99))
	assert.True(t, key.InTimeRange(100))
	assert.True(t, key.InTimeRange(199))
	assert.False(t, key.InTimeRange(200))
}

func TestWorldStateEndToEnd(t *testing.T) {
	world, _ := newWorld(t)

	supply, err := world.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, 500.0, supply)

	rewards, err := world.TotalRewardsPerSecond()
	require.NoError(t, err)
	assert.Equal(t, 50.0, rewards)

	apr, err := world.APR()
	require.NoError(t, err)
	assert.InDelta(t, 3_153_600.0, apr, 1e-6)
}

func TestWorldStateTotalSupplyTakesMaximum(t *testing.T) {
	world, _ := newWorld(t)
	world.Incentives[mustKey(t, tokenB, 0, 1000)] = Incentive{
		Token0Amount: big.NewInt(10),
		Token1Amount: big.NewInt(20),
		RewardRate:   big.NewInt(1),
	}
	world.Prices[tokenB] = 1

	supply, err := world.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, 500.0, supply)
}

func TestWorldStateTotalSupplyNoIncentives(t *testing.T) {
	world, _ := newWorld(t)
	world.Incentives = map[IncentiveKey]Incentive{}

	supply, err := world.TotalSupply()
	assert.ErrorIs(t, err, ErrNoIncentives)
	assert.True(t, math.IsNaN(supply))

	_, err = world.APR()
	assert.ErrorIs(t, err, ErrNoIncentives)
}

func TestWorldStateRewardsSkipExpiredAndEmpty(t *testing.T) {
	world, _ := newWorld(t)
	world.Now = 200
	world.Incentives[mustKey(t, tokenB, 0, 100)] = Incentive{RewardRate: big.NewInt(1000)}
	world.Incentives[mustKey(t, tokenB, 150, 300)] = Incentive{RewardRate: big.NewInt(1000), IsEmpty: true}
	world.Prices[tokenB] = 3

	rewards, err := world.TotalRewardsPerSecond()
	require.NoError(t, err)
	assert.Equal(t, 50.0, rewards)
	assert.Equal(t, 1, world.ActiveIncentives())
}

func TestWorldStateMissingRewardPrice(t *testing.T) {
	world, _ := newWorld(t)
	delete(world.Prices, tokenA)

	rewards, err := world.TotalRewardsPerSecond()
	assert.ErrorIs(t, err, ErrMissingPrice)
	assert.True(t, math.IsNaN(rewards))
}

func TestWorldStateMissingPriceIgnoredForInactiveIncentive(t *testing.T) {
	world, _ := newWorld(t)
	world.Incentives[mustKey(t, tokenB, 0, 100)] = Incentive{RewardRate: big.NewInt(7)}

	rewards, err := world.TotalRewardsPerSecond()
	require.NoError(t, err)
	assert.Equal(t, 50.0, rewards)
}

func TestWorldStateMissingTokenPrice(t *testing.T) {
	world, _ := newWorld(t)
	delete(world.Prices, token1)

	_, err := world.TotalSupply()
	assert.ErrorIs(t, err, ErrMissingPrice)
}

func TestWorldStateZeroSupplyAPRUndefined(t *testing.T) {
	world, key := newWorld(t)
	incentive := world.Incentives[key]
	incentive.Token0Amount = big.NewInt(0)
	incentive.Token1Amount = big.NewInt(0)
	world.Incentives[key] = incentive

	apr, err := world.APR()
	assert.ErrorIs(t, err, ErrZeroSupply)
	assert.True(t, math.IsNaN(apr))
}

func TestWorldStateIdempotent(t *testing.T) {
	world, _ := newWorld(t)
	for i := 0; i < 5; i++ {
		world.Incentives[mustKey(t, tokenB, uint64(i), 1000)] = Incentive{
			Token0Amount: big.NewInt(int64(90 + i)),
			Token1Amount: big.NewInt(int64(3 * i)),
			RewardRate:   big.NewInt(int64(i + 1)),
		}
	}
	world.Prices[tokenB] = 0.1

	first, err := world.APR()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := world.APR()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
