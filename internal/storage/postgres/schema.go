package postgres

var snapshotTables = []string{"pools", "liquidity_positions", "stake_records", "reward_vaults"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ledger_state (
		name TEXT PRIMARY KEY,
		last_seq NUMERIC(20,0) NOT NULL,
		epoch BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pools (
		state_name TEXT NOT NULL,
		pool_id TEXT NOT NULL,
		amm_id TEXT NOT NULL,
		mint_a TEXT NOT NULL,
		mint_b TEXT NOT NULL,
		authority TEXT NOT NULL,
		liquidity_mint TEXT NOT NULL,
		reserve_a NUMERIC(20,0) NOT NULL,
		reserve_b NUMERIC(20,0) NOT NULL,
		total_liquidity NUMERIC(20,0) NOT NULL,
		fee_bps INTEGER NOT NULL,
		PRIMARY KEY (state_name, pool_id)
	)`,
	`CREATE TABLE IF NOT EXISTS liquidity_positions (
		state_name TEXT NOT NULL,
		pool_id TEXT NOT NULL,
		owner TEXT NOT NULL,
		lp_tokens NUMERIC(20,0) NOT NULL,
		PRIMARY KEY (state_name, pool_id, owner)
	)`,
	`CREATE TABLE IF NOT EXISTS stake_records (
		state_name TEXT NOT NULL,
		record_id TEXT NOT NULL,
		staker TEXT NOT NULL,
		mint TEXT NOT NULL,
		amount NUMERIC(20,0) NOT NULL,
		staked_at_epoch BIGINT NOT NULL,
		PRIMARY KEY (state_name, record_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reward_vaults (
		state_name TEXT NOT NULL,
		mint TEXT NOT NULL,
		vault_id TEXT NOT NULL,
		balance NUMERIC(20,0) NOT NULL,
		PRIMARY KEY (state_name, mint)
	)`,
}
