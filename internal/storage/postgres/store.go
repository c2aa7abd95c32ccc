package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammledger/internal/model"
)

// Store provides Postgres persistence for ledger snapshots. Every row is keyed by a
// state name so several ledgers can share one database.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveSnapshot replaces the stored snapshot for name in a single transaction.
func (s *Store) SaveSnapshot(ctx context.Context, name string, snap model.Snapshot) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`
			INSERT INTO ledger_state (name, last_seq, epoch, updated_at)
			VALUES ($1, $2::numeric, $3, now())
			ON CONFLICT (name) DO UPDATE
			SET last_seq = EXCLUDED.last_seq, epoch = EXCLUDED.epoch, updated_at = now()
		`, name, formatAmount(snap.LastSeq), snap.Epoch)

		for _, table := range snapshotTables {
			batch.Queue(`DELETE FROM `+table+` WHERE state_name = $1`, name)
		}

		for _, pool := range snap.Pools {
			batch.Queue(`
				INSERT INTO pools (
					state_name, pool_id, amm_id, mint_a, mint_b, authority, liquidity_mint,
					reserve_a, reserve_b, total_liquidity, fee_bps
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10::numeric, $11)
			`,
				name,
				pool.ID.String(),
				pool.AmmID.String(),
				pool.MintA.String(),
				pool.MintB.String(),
				pool.Authority.String(),
				pool.LiquidityMint.String(),
				formatAmount(pool.ReserveA),
				formatAmount(pool.ReserveB),
				formatAmount(pool.TotalLiquidity),
				int32(pool.FeeBps),
			)
		}
		for _, pos := range snap.Positions {
			batch.Queue(`
				INSERT INTO liquidity_positions (state_name, pool_id, owner, lp_tokens)
				VALUES ($1, $2, $3, $4::numeric)
			`, name, pos.PoolID.String(), pos.Owner.String(), formatAmount(pos.LPTokens))
		}
		for _, rec := range snap.Stakes {
			batch.Queue(`
				INSERT INTO stake_records (state_name, record_id, staker, mint, amount, staked_at_epoch)
				VALUES ($1, $2, $3, $4, $5::numeric, $6)
			`, name, rec.ID.String(), rec.Staker.String(), rec.Mint.String(), formatAmount(rec.Amount), rec.StakedAtEpoch)
		}
		for _, vault := range snap.Vaults {
			batch.Queue(`
				INSERT INTO reward_vaults (state_name, mint, vault_id, balance)
				VALUES ($1, $2, $3, $4::numeric)
			`, name, vault.Mint.String(), vault.ID.String(), formatAmount(vault.Balance))
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("save snapshot: %w", err)
			}
		}
		return br.Close()
	})
}

// LoadSnapshot returns the snapshot stored under name, or false when none exists.
func (s *Store) LoadSnapshot(ctx context.Context, name string) (model.Snapshot, bool, error) {
	if name == "" {
		return model.Snapshot{}, false, fmt.Errorf("state name required")
	}

	var (
		snap      model.Snapshot
		lastSeq   string
		updatedAt time.Time
	)
	row := s.pool.QueryRow(ctx, `SELECT last_seq::text, epoch, updated_at FROM ledger_state WHERE name=$1`, name)
	if err := row.Scan(&lastSeq, &snap.Epoch, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Snapshot{}, false, nil
		}
		return model.Snapshot{}, false, err
	}
	var err error
	if snap.LastSeq, err = parseAmount(lastSeq); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("last_seq: %w", err)
	}
	snap.UpdatedAt = updatedAt.UTC().Format(time.RFC3339Nano)

	if snap.Pools, err = s.loadPools(ctx, name); err != nil {
		return model.Snapshot{}, false, err
	}
	if snap.Positions, err = s.loadPositions(ctx, name); err != nil {
		return model.Snapshot{}, false, err
	}
	if snap.Stakes, err = s.loadStakes(ctx, name); err != nil {
		return model.Snapshot{}, false, err
	}
	if snap.Vaults, err = s.loadVaults(ctx, name); err != nil {
		return model.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *Store) loadPools(ctx context.Context, name string) ([]model.Pool, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pool_id, amm_id, mint_a, mint_b, authority, liquidity_mint,
			reserve_a::text, reserve_b::text, total_liquidity::text, fee_bps
		FROM pools WHERE state_name=$1 ORDER BY pool_id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query pools: %w", err)
	}
	defer rows.Close()

	var pools []model.Pool
	for rows.Next() {
		var pool model.Pool
		var addrs [6]string
		var amounts [3]string
		var feeBps int32
		targets := []*model.Address{&pool.ID, &pool.AmmID, &pool.MintA, &pool.MintB, &pool.Authority, &pool.LiquidityMint}
		amountTargets := []*uint64{&pool.ReserveA, &pool.ReserveB, &pool.TotalLiquidity}
		if err := rows.Scan(&addrs[0], &addrs[1], &addrs[2], &addrs[3], &addrs[4], &addrs[5],
			&amounts[0], &amounts[1], &amounts[2], &feeBps); err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		for i, raw := range addrs {
			if *targets[i], err = model.ParseAddress(raw); err != nil {
				return nil, fmt.Errorf("pool address: %w", err)
			}
		}
		for i, raw := range amounts {
			if *amountTargets[i], err = parseAmount(raw); err != nil {
				return nil, fmt.Errorf("pool amount: %w", err)
			}
		}
		if feeBps < 0 || feeBps > model.MaxFeeBps {
			return nil, fmt.Errorf("pool %s has fee %d", pool.ID, feeBps)
		}
		pool.FeeBps = uint16(feeBps)
		pools = append(pools, pool)
	}
	return pools, rows.Err()
}

func (s *Store) loadPositions(ctx context.Context, name string) ([]model.LiquidityPosition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pool_id, owner, lp_tokens::text
		FROM liquidity_positions WHERE state_name=$1 ORDER BY pool_id, owner
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var positions []model.LiquidityPosition
	for rows.Next() {
		var poolID, owner, lp string
		if err := rows.Scan(&poolID, &owner, &lp); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		var pos model.LiquidityPosition
		if pos.PoolID, err = model.ParseAddress(poolID); err != nil {
			return nil, fmt.Errorf("position pool: %w", err)
		}
		if pos.Owner, err = model.ParseAddress(owner); err != nil {
			return nil, fmt.Errorf("position owner: %w", err)
		}
		if pos.LPTokens, err = parseAmount(lp); err != nil {
			return nil, fmt.Errorf("position lp tokens: %w", err)
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (s *Store) loadStakes(ctx context.Context, name string) ([]model.StakeRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT record_id, staker, mint, amount::text, staked_at_epoch
		FROM stake_records WHERE state_name=$1 ORDER BY record_id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query stakes: %w", err)
	}
	defer rows.Close()

	var records []model.StakeRecord
	for rows.Next() {
		var id, staker, mint, amount string
		rec := model.StakeRecord{IsStaked: true}
		if err := rows.Scan(&id, &staker, &mint, &amount, &rec.StakedAtEpoch); err != nil {
			return nil, fmt.Errorf("scan stake: %w", err)
		}
		if rec.ID, err = model.ParseAddress(id); err != nil {
			return nil, fmt.Errorf("stake id: %w", err)
		}
		if rec.Staker, err = model.ParseAddress(staker); err != nil {
			return nil, fmt.Errorf("stake staker: %w", err)
		}
		if rec.Mint, err = model.ParseAddress(mint); err != nil {
			return nil, fmt.Errorf("stake mint: %w", err)
		}
		if rec.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("stake amount: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) loadVaults(ctx context.Context, name string) ([]model.RewardVault, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT mint, vault_id, balance::text
		FROM reward_vaults WHERE state_name=$1 ORDER BY mint
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query vaults: %w", err)
	}
	defer rows.Close()

	var vaults []model.RewardVault
	for rows.Next() {
		var mint, id, balance string
		if err := rows.Scan(&mint, &id, &balance); err != nil {
			return nil, fmt.Errorf("scan vault: %w", err)
		}
		var vault model.RewardVault
		if vault.Mint, err = model.ParseAddress(mint); err != nil {
			return nil, fmt.Errorf("vault mint: %w", err)
		}
		if vault.ID, err = model.ParseAddress(id); err != nil {
			return nil, fmt.Errorf("vault id: %w", err)
		}
		if vault.Balance, err = parseAmount(balance); err != nil {
			return nil, fmt.Errorf("vault balance: %w", err)
		}
		vaults = append(vaults, vault)
	}
	return vaults, rows.Err()
}

// Amounts are uint64 and stored as NUMERIC(20,0); they travel as decimal text.
func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseAmount(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
