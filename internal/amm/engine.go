// Package amm implements constant-product pool accounting: pool creation, liquidity
// deposit and withdrawal, and swaps. The engine performs no I/O and is not safe for
// concurrent use; callers serialise access.
package amm

import (
	"fmt"
	"sort"

	"ammledger/internal/derive"
	"ammledger/internal/model"
)

type positionKey struct {
	pool  model.Address
	owner model.Address
}

// Engine owns every pool and liquidity position.
type Engine struct {
	pools     map[model.Address]*model.Pool
	positions map[positionKey]*model.LiquidityPosition
}

func NewEngine() *Engine {
	return &Engine{
		pools:     make(map[model.Address]*model.Pool),
		positions: make(map[positionKey]*model.LiquidityPosition),
	}
}

// CreatePool registers an empty pool for (ammID, mintA, mintB).
func (e *Engine) CreatePool(ammID, mintA, mintB model.Address, feeBps uint16) (model.Pool, error) {
	if feeBps > model.MaxFeeBps {
		return model.Pool{}, ErrInvalidFee
	}
	if mintA == mintB {
		return model.Pool{}, ErrIdenticalMints
	}

	id := derive.PoolAddress(ammID, mintA, mintB)
	if _, ok := e.pools[id]; ok {
		return model.Pool{}, fmt.Errorf("%w: %s", ErrDuplicatePool, id)
	}

	pool := &model.Pool{
		ID:            id,
		AmmID:         ammID,
		MintA:         mintA,
		MintB:         mintB,
		Authority:     derive.PoolAuthority(ammID, mintA, mintB),
		LiquidityMint: derive.LiquidityMint(ammID, mintA, mintB),
		FeeBps:        feeBps,
	}
	e.pools[id] = pool
	return *pool, nil
}

// Pool returns a copy of the pool state.
func (e *Engine) Pool(id model.Address) (model.Pool, bool) {
	pool, ok := e.pools[id]
	if !ok {
		return model.Pool{}, false
	}
	return *pool, true
}

// Position returns the owner's LP balance in a pool, zero when none is held.
func (e *Engine) Position(poolID, owner model.Address) model.LiquidityPosition {
	pos, ok := e.positions[positionKey{pool: poolID, owner: owner}]
	if !ok {
		return model.LiquidityPosition{Owner: owner, PoolID: poolID}
	}
	return *pos
}

func (e *Engine) getPool(id model.Address) (*model.Pool, error) {
	pool, ok := e.pools[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id)
	}
	return pool, nil
}

// Pools returns every pool ordered by id.
func (e *Engine) Pools() []model.Pool {
	pools := make([]model.Pool, 0, len(e.pools))
	for _, pool := range e.pools {
		pools = append(pools, *pool)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].ID.Compare(pools[j].ID) < 0 })
	return pools
}

// Snapshot returns all pools and positions ordered by id, owner.
func (e *Engine) Snapshot() ([]model.Pool, []model.LiquidityPosition) {
	pools := e.Pools()

	positions := make([]model.LiquidityPosition, 0, len(e.positions))
	for _, pos := range e.positions {
		positions = append(positions, *pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if c := positions[i].PoolID.Compare(positions[j].PoolID); c != 0 {
			return c < 0
		}
		return positions[i].Owner.Compare(positions[j].Owner) < 0
	})
	return pools, positions
}

// checkRestoredPool verifies the derived accounts and the reserve invariants of a
// persisted pool.
func checkRestoredPool(pool model.Pool) error {
	if pool.MintA == pool.MintB {
		return fmt.Errorf("pool %s: %w", pool.ID, ErrIdenticalMints)
	}
	if want := derive.PoolAddress(pool.AmmID, pool.MintA, pool.MintB); pool.ID != want {
		return fmt.Errorf("pool %s does not match derived id %s", pool.ID, want)
	}
	if want := derive.PoolAuthority(pool.AmmID, pool.MintA, pool.MintB); pool.Authority != want {
		return fmt.Errorf("pool %s authority %s does not match derived %s", pool.ID, pool.Authority, want)
	}
	if want := derive.LiquidityMint(pool.AmmID, pool.MintA, pool.MintB); pool.LiquidityMint != want {
		return fmt.Errorf("pool %s liquidity mint %s does not match derived %s", pool.ID, pool.LiquidityMint, want)
	}
	if pool.TotalLiquidity == 0 {
		if pool.ReserveA != 0 || pool.ReserveB != 0 {
			return fmt.Errorf("pool %s holds reserves (%d, %d) without liquidity", pool.ID, pool.ReserveA, pool.ReserveB)
		}
		return nil
	}
	if pool.ReserveA == 0 || pool.ReserveB == 0 {
		return fmt.Errorf("pool %s has liquidity %d with reserves (%d, %d)",
			pool.ID, pool.TotalLiquidity, pool.ReserveA, pool.ReserveB)
	}
	return nil
}

// Restore replaces the engine state. Positions must reference known pools and sum to
// each pool's total liquidity; on error the engine is left unchanged.
func (e *Engine) Restore(pools []model.Pool, positions []model.LiquidityPosition) error {
	nextPools := make(map[model.Address]*model.Pool, len(pools))
	for i := range pools {
		pool := pools[i]
		if _, ok := nextPools[pool.ID]; ok {
			return fmt.Errorf("restore: %w: %s", ErrDuplicatePool, pool.ID)
		}
		if pool.FeeBps > model.MaxFeeBps {
			return fmt.Errorf("restore: pool %s: %w", pool.ID, ErrInvalidFee)
		}
		if err := checkRestoredPool(pool); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		nextPools[pool.ID] = &pool
	}

	sums := make(map[model.Address]uint64, len(pools))
	nextPositions := make(map[positionKey]*model.LiquidityPosition, len(positions))
	for i := range positions {
		pos := positions[i]
		if _, ok := nextPools[pos.PoolID]; !ok {
			return fmt.Errorf("restore: position of %s: %w: %s", pos.Owner, ErrPoolNotFound, pos.PoolID)
		}
		if pos.LPTokens == 0 {
			continue
		}
		key := positionKey{pool: pos.PoolID, owner: pos.Owner}
		if _, ok := nextPositions[key]; ok {
			return fmt.Errorf("restore: duplicate position of %s in pool %s", pos.Owner, pos.PoolID)
		}
		sum := sums[pos.PoolID] + pos.LPTokens
		if sum < pos.LPTokens {
			return fmt.Errorf("restore: pool %s: %w", pos.PoolID, ErrArithmeticOverflow)
		}
		sums[pos.PoolID] = sum
		nextPositions[key] = &pos
	}
	for id, pool := range nextPools {
		if sums[id] != pool.TotalLiquidity {
			return fmt.Errorf("restore: pool %s positions sum %d != total liquidity %d", id, sums[id], pool.TotalLiquidity)
		}
	}

	e.pools = nextPools
	e.positions = nextPositions
	return nil
}
