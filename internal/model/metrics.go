package model

// PoolMetrics stores pool-level staking metrics for one snapshot.
// A nil metric is undefined; Undefined carries the reason keyed by field name.
type PoolMetrics struct {
	ChainID          uint64            `json:"chain_id"`
	PoolAddress      string            `json:"pool"`
	BlockNumber      uint64            `json:"block_number"`
	Timestamp        uint64            `json:"timestamp"`
	CurrentTick      int32             `json:"current_tick"`
	Incentives       int               `json:"incentives"`
	ActiveIncentives int               `json:"active_incentives"`
	TotalSupply      *float64          `json:"total_supply"`
	RewardsPerSecond *float64          `json:"rewards_per_second"`
	APR              *float64          `json:"apr"`
	Undefined        map[string]string `json:"undefined,omitempty"`
}

// UserMetrics stores one owner's staking metrics in a pool for one snapshot.
type UserMetrics struct {
	ChainID           uint64            `json:"chain_id"`
	PoolAddress       string            `json:"pool"`
	BlockNumber       uint64            `json:"block_number"`
	Owner             string            `json:"owner"`
	Positions         int               `json:"positions"`
	InRangePositions  int               `json:"in_range_positions"`
	AllSupply         *float64          `json:"all_supply"`
	AllActiveSupply   *float64          `json:"all_active_supply"`
	RewardRate        *float64          `json:"reward_rate"`
	NominalRewardRate *float64          `json:"nominal_reward_rate"`
	APR               *float64          `json:"apr"`
	BoostRatio        *float64          `json:"boost_ratio"`
	Claimable         []ClaimableAmount `json:"claimable"`
	Undefined         map[string]string `json:"undefined,omitempty"`
}

// ClaimableAmount is an unclaimed reward amount for one reward token. Amount is raw;
// Formatted is scaled by Decimals when token metadata is known.
type ClaimableAmount struct {
	Token     string `json:"token"`
	Symbol    string `json:"symbol,omitempty"`
	Decimals  uint8  `json:"decimals,omitempty"`
	Amount    string `json:"amount"`
	Formatted string `json:"formatted,omitempty"`
}
