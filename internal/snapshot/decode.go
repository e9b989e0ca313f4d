package snapshot

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"stakerScope/internal/model"
	"stakerScope/internal/staking"
)

var (
	ErrDuplicateIncentive = errors.New("duplicate incentive")
	ErrDuplicatePosition  = errors.New("duplicate position")
	ErrDuplicatePrice     = errors.New("duplicate price")
	ErrUnknownIncentive   = errors.New("stake references unknown incentive")
)

// Snapshot is a decoded, validated pool snapshot. It is read-only once built.
type Snapshot struct {
	ChainID     uint64
	Pool        common.Address
	BlockNumber uint64
	World       *staking.WorldState
	Users       []*staking.UserState
	Tokens      map[common.Address]model.TokenMeta
}

// Decode validates a snapshot record and builds the core state from it.
func Decode(record model.PoolSnapshot) (*Snapshot, error) {
	pool, err := ParseAddress("pool", record.Pool)
	if err != nil {
		return nil, err
	}
	token0, err := ParseAddress("token0", record.Token0)
	if err != nil {
		return nil, err
	}
	token1, err := ParseAddress("token1", record.Token1)
	if err != nil {
		return nil, err
	}

	currentTick := staking.Tick(record.CurrentTick)
	if !currentTick.Valid() {
		return nil, fmt.Errorf("current_tick: %w: %d", staking.ErrTickOutOfRange, record.CurrentTick)
	}

	prices, err := decodePrices(record.Prices)
	if err != nil {
		return nil, err
	}
	incentives, err := decodeIncentives(record.Incentives)
	if err != nil {
		return nil, err
	}

	world := &staking.WorldState{
		Pool:       &staking.Pool{CurrentTick: currentTick},
		Now:        record.Timestamp,
		Token0:     token0,
		Token1:     token1,
		Incentives: incentives,
		Prices:     prices,
	}

	users := make([]*staking.UserState, 0, len(record.Users))
	seenOwners := make(map[common.Address]struct{}, len(record.Users))
	for i, rec := range record.Users {
		user, err := decodeUser(world, rec)
		if err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		if _, dup := seenOwners[user.Owner]; dup {
			return nil, fmt.Errorf("users[%d]: duplicate owner %s", i, user.Owner.Hex())
		}
		seenOwners[user.Owner] = struct{}{}
		users = append(users, user)
	}

	tokens := make(map[common.Address]model.TokenMeta, len(record.Tokens))
	for i, meta := range record.Tokens {
		addr, err := ParseAddress(fmt.Sprintf("tokens[%d]", i), meta.Address)
		if err != nil {
			return nil, err
		}
		tokens[addr] = meta
	}

	return &Snapshot{
		ChainID:     record.ChainID,
		Pool:        pool,
		BlockNumber: record.BlockNumber,
		World:       world,
		Users:       users,
		Tokens:      tokens,
	}, nil
}

func decodePrices(records []model.PriceRecord) (staking.PriceTable, error) {
	prices := make(staking.PriceTable, len(records))
	for i, rec := range records {
		field := fmt.Sprintf("prices[%d]", i)
		token, err := ParseAddress(field, rec.Token)
		if err != nil {
			return nil, err
		}
		if _, dup := prices[token]; dup {
			return nil, fmt.Errorf("%s: %w %s", field, ErrDuplicatePrice, token.Hex())
		}
		price, err := parsePrice(field, rec.Price)
		if err != nil {
			return nil, err
		}
		prices[token] = price
	}
	return prices, nil
}

func decodeIncentives(records []model.IncentiveRecord) (map[staking.IncentiveKey]staking.Incentive, error) {
	incentives := make(map[staking.IncentiveKey]staking.Incentive, len(records))
	for i, rec := range records {
		field := fmt.Sprintf("incentives[%d]", i)
		key, err := decodeKey(field, rec.RewardToken, rec.StartTime, rec.EndTime)
		if err != nil {
			return nil, err
		}
		if _, dup := incentives[key]; dup {
			return nil, fmt.Errorf("%s: %w %s", field, ErrDuplicateIncentive, key)
		}

		amounts, err := parseAmounts(field, []namedAmount{
			{"token0_amount", rec.Token0Amount},
			{"token1_amount", rec.Token1Amount},
			{"token_unreleased", rec.TokenUnreleased},
			{"reward_rate", rec.RewardRate},
		})
		if err != nil {
			return nil, err
		}
		incentives[key] = staking.Incentive{
			Token0Amount:    amounts["token0_amount"],
			Token1Amount:    amounts["token1_amount"],
			TokenUnreleased: amounts["token_unreleased"],
			RewardRate:      amounts["reward_rate"],
			IsEmpty:         rec.IsEmpty,
		}
	}
	return incentives, nil
}

func decodeUser(world *staking.WorldState, rec model.UserRecord) (*staking.UserState, error) {
	owner, err := ParseAddress("owner", rec.Owner)
	if err != nil {
		return nil, err
	}

	positions := make(map[staking.TokenID]*staking.Position, len(rec.Positions))
	for i, pos := range rec.Positions {
		field := fmt.Sprintf("positions[%d]", i)
		id, err := parseTokenID(field+".token_id", pos.TokenID)
		if err != nil {
			return nil, err
		}
		if _, dup := positions[id]; dup {
			return nil, fmt.Errorf("%s: %w %d", field, ErrDuplicatePosition, id)
		}
		liquidity, err := parseAmount(field+".liquidity", pos.Liquidity)
		if err != nil {
			return nil, err
		}
		position, err := staking.NewPosition(world.Pool, liquidity, staking.Tick(pos.TickLower), staking.Tick(pos.TickUpper))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		positions[id] = position
	}

	stakes := make(map[staking.TokenID]map[staking.IncentiveKey]staking.IncentiveStake)
	for i, st := range rec.Stakes {
		field := fmt.Sprintf("stakes[%d]", i)
		id, err := parseTokenID(field+".token_id", st.TokenID)
		if err != nil {
			return nil, err
		}
		key, err := decodeKey(field, st.RewardToken, st.StartTime, st.EndTime)
		if err != nil {
			return nil, err
		}
		if _, ok := world.Incentives[key]; !ok {
			return nil, fmt.Errorf("%s: %w %s", field, ErrUnknownIncentive, key)
		}

		amounts, err := parseAmounts(field, []namedAmount{
			{"liquidity", st.Liquidity},
			{"boost_liquidity", st.BoostLiquidity},
			{"reward_rate", st.RewardRate},
			{"unclaimed_reward", st.UnclaimedReward},
		})
		if err != nil {
			return nil, err
		}

		byKey, ok := stakes[id]
		if !ok {
			byKey = make(map[staking.IncentiveKey]staking.IncentiveStake)
			stakes[id] = byKey
		}
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("%s: duplicate stake of token %d in %s", field, id, key)
		}
		byKey[key] = staking.IncentiveStake{
			Liquidity:       amounts["liquidity"],
			BoostLiquidity:  amounts["boost_liquidity"],
			RewardRate:      amounts["reward_rate"],
			UnclaimedReward: amounts["unclaimed_reward"],
		}
	}

	return staking.NewUserState(world, owner, positions, stakes)
}

func decodeKey(field, rewardToken string, start, end uint64) (staking.IncentiveKey, error) {
	token, err := ParseAddress(field+".reward_token", rewardToken)
	if err != nil {
		return staking.IncentiveKey{}, err
	}
	key, err := staking.NewIncentiveKey(token, start, end)
	if err != nil {
		return staking.IncentiveKey{}, fmt.Errorf("%s: %w", field, err)
	}
	return key, nil
}

type namedAmount struct {
	name  string
	value string
}

// parseAmounts parses values in order, so the first malformed field is the one reported.
func parseAmounts(field string, values []namedAmount) (map[string]*big.Int, error) {
	out := make(map[string]*big.Int, len(values))
	for _, v := range values {
		amount, err := parseAmount(field+"."+v.name, v.value)
		if err != nil {
			return nil, err
		}
		out[v.name] = amount
	}
	return out, nil
}

// At returns a copy of s evaluated at timestamp now. Positions, stakes and the pool are
// shared with s.
func (s *Snapshot) At(now uint64) (*Snapshot, error) {
	world := *s.World
	world.Now = now

	users := make([]*staking.UserState, 0, len(s.Users))
	for _, user := range s.Users {
		moved, err := staking.NewUserState(&world, user.Owner, user.Positions, user.Stakes)
		if err != nil {
			return nil, fmt.Errorf("owner %s: %w", user.Owner.Hex(), err)
		}
		users = append(users, moved)
	}

	clone := *s
	clone.World = &world
	clone.Users = users
	return &clone, nil
}
