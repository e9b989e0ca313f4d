package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS pool_staking_metrics (
		chain_id BIGINT NOT NULL,
		pool_address TEXT NOT NULL,
		block_number BIGINT NOT NULL,
		block_timestamp BIGINT NOT NULL,
		current_tick INTEGER NOT NULL,
		incentives INTEGER NOT NULL,
		active_incentives INTEGER NOT NULL,
		total_supply DOUBLE PRECISION,
		rewards_per_second DOUBLE PRECISION,
		apr DOUBLE PRECISION,
		undefined JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (chain_id, pool_address, block_number)
	)`,
	`CREATE TABLE IF NOT EXISTS user_staking_metrics (
		chain_id BIGINT NOT NULL,
		pool_address TEXT NOT NULL,
		block_number BIGINT NOT NULL,
		owner TEXT NOT NULL,
		positions INTEGER NOT NULL,
		in_range_positions INTEGER NOT NULL,
		all_supply DOUBLE PRECISION,
		all_active_supply DOUBLE PRECISION,
		reward_rate DOUBLE PRECISION,
		nominal_reward_rate DOUBLE PRECISION,
		apr DOUBLE PRECISION,
		boost_ratio DOUBLE PRECISION,
		claimable JSONB,
		undefined JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (chain_id, pool_address, block_number, owner)
	)`,
}

const upsertPoolMetricsSQL = `
	INSERT INTO pool_staking_metrics (
		chain_id, pool_address, block_number, block_timestamp, current_tick,
		incentives, active_incentives, total_supply, rewards_per_second, apr, undefined,
		created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
	ON CONFLICT (chain_id, pool_address, block_number)
	DO UPDATE SET
		block_timestamp = EXCLUDED.block_timestamp,
		current_tick = EXCLUDED.current_tick,
		incentives = EXCLUDED.incentives,
		active_incentives = EXCLUDED.active_incentives,
		total_supply = EXCLUDED.total_supply,
		rewards_per_second = EXCLUDED.rewards_per_second,
		apr = EXCLUDED.apr,
		undefined = EXCLUDED.undefined,
		updated_at = now()
`

const upsertUserMetricsSQL = `
	INSERT INTO user_staking_metrics (
		chain_id, pool_address, block_number, owner, positions, in_range_positions,
		all_supply, all_active_supply, reward_rate, nominal_reward_rate, apr, boost_ratio,
		claimable, undefined, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
	ON CONFLICT (chain_id, pool_address, block_number, owner)
	DO UPDATE SET
		positions = EXCLUDED.positions,
		in_range_positions = EXCLUDED.in_range_positions,
		all_supply = EXCLUDED.all_supply,
		all_active_supply = EXCLUDED.all_active_supply,
		reward_rate = EXCLUDED.reward_rate,
		nominal_reward_rate = EXCLUDED.nominal_reward_rate,
		apr = EXCLUDED.apr,
		boost_ratio = EXCLUDED.boost_ratio,
		claimable = EXCLUDED.claimable,
		undefined = EXCLUDED.undefined,
		updated_at = now()
`
