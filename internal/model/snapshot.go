package model

// PoolSnapshot is the frozen state of one staking pool at one block, stored one per
// JSONL line. Big integers are decimal strings; prices are decimal strings.
type PoolSnapshot struct {
	ChainID     uint64            `json:"chain_id"`
	Pool        string            `json:"pool"`
	BlockNumber uint64            `json:"block_number"`
	Timestamp   uint64            `json:"timestamp"`
	CurrentTick int32             `json:"current_tick"`
	Token0      string            `json:"token0"`
	Token1      string            `json:"token1"`
	Fee         uint32            `json:"fee,omitempty"`
	TickSpacing int32             `json:"tick_spacing,omitempty"`
	Prices      []PriceRecord     `json:"prices"`
	Incentives  []IncentiveRecord `json:"incentives"`
	Users       []UserRecord      `json:"users"`
	Tokens      []TokenMeta       `json:"tokens,omitempty"`
}

// PriceRecord is one entry of the price table.
type PriceRecord struct {
	Token string `json:"token"`
	Price string `json:"price"`
}

// IncentiveRecord is the pool-level state of one incentive.
type IncentiveRecord struct {
	RewardToken     string `json:"reward_token"`
	StartTime       uint64 `json:"start_time"`
	EndTime         uint64 `json:"end_time"`
	Token0Amount    string `json:"token0_amount"`
	Token1Amount    string `json:"token1_amount"`
	TokenUnreleased string `json:"token_unreleased"`
	RewardRate      string `json:"reward_rate"`
	IsEmpty         bool   `json:"is_empty"`
}

// UserRecord holds one owner's positions and stakes in the pool.
type UserRecord struct {
	Owner     string           `json:"owner"`
	Positions []PositionRecord `json:"positions"`
	Stakes    []StakeRecord    `json:"stakes"`
}

// PositionRecord is a liquidity position NFT.
type PositionRecord struct {
	TokenID   string `json:"token_id"`
	Liquidity string `json:"liquidity"`
	TickLower int32  `json:"tick_lower"`
	TickUpper int32  `json:"tick_upper"`
}

// StakeRecord is a position's stake in one incentive.
type StakeRecord struct {
	TokenID         string `json:"token_id"`
	RewardToken     string `json:"reward_token"`
	StartTime       uint64 `json:"start_time"`
	EndTime         uint64 `json:"end_time"`
	Liquidity       string `json:"liquidity"`
	BoostLiquidity  string `json:"boost_liquidity"`
	RewardRate      string `json:"reward_rate"`
	UnclaimedReward string `json:"unclaimed_reward"`
}
