package amm

import (
	"errors"

	"ammledger/internal/model"
	"ammledger/internal/safemath"
)

// DepositParams bounds a liquidity deposit. The accepted pair never exceeds the desired
// amounts and must reach the minimums.
type DepositParams struct {
	AmountADesired uint64
	AmountBDesired uint64
	AmountAMin     uint64
	AmountBMin     uint64
}

type DepositResult struct {
	AmountA  uint64        `json:"amount_a"`
	AmountB  uint64        `json:"amount_b"`
	LPMinted uint64        `json:"lp_minted"`
	Pool     model.Pool    `json:"pool"`
	Deltas   []model.Delta `json:"-"`
}

type WithdrawResult struct {
	AmountA  uint64        `json:"amount_a"`
	AmountB  uint64        `json:"amount_b"`
	LPBurned uint64        `json:"lp_burned"`
	Pool     model.Pool    `json:"pool"`
	Deltas   []model.Delta `json:"-"`
}

// DepositLiquidity adds liquidity at the current reserve ratio, or at the given pair
// when the pool is empty, and mints LP tokens to owner.
func (e *Engine) DepositLiquidity(poolID, owner model.Address, params DepositParams) (DepositResult, error) {
	pool, err := e.getPool(poolID)
	if err != nil {
		return DepositResult{}, err
	}
	if params.AmountADesired == 0 || params.AmountBDesired == 0 {
		return DepositResult{}, ErrZeroAmount
	}

	amountA, amountB, err := depositAmounts(*pool, params.AmountADesired, params.AmountBDesired)
	if err != nil {
		return DepositResult{}, err
	}
	if amountA == 0 || amountB == 0 {
		return DepositResult{}, ErrZeroAmount
	}
	if amountA < params.AmountAMin || amountB < params.AmountBMin {
		return DepositResult{}, ErrSlippageExceeded
	}

	var minted uint64
	if pool.Empty() {
		minted = safemath.SqrtProduct(amountA, amountB)
	} else {
		minted, err = safemath.MulDiv(pool.TotalLiquidity, amountA, pool.ReserveA)
		if err != nil {
			return DepositResult{}, mapDivision(err)
		}
	}
	if minted == 0 {
		return DepositResult{}, ErrZeroAmount
	}

	reserveA, err := safemath.Add(pool.ReserveA, amountA)
	if err != nil {
		return DepositResult{}, err
	}
	reserveB, err := safemath.Add(pool.ReserveB, amountB)
	if err != nil {
		return DepositResult{}, err
	}
	total, err := safemath.Add(pool.TotalLiquidity, minted)
	if err != nil {
		return DepositResult{}, err
	}
	key := positionKey{pool: poolID, owner: owner}
	var held uint64
	if pos, ok := e.positions[key]; ok {
		held = pos.LPTokens
	}
	nextHeld, err := safemath.Add(held, minted)
	if err != nil {
		return DepositResult{}, err
	}

	pool.ReserveA = reserveA
	pool.ReserveB = reserveB
	pool.TotalLiquidity = total
	e.positions[key] = &model.LiquidityPosition{Owner: owner, PoolID: poolID, LPTokens: nextHeld}

	return DepositResult{
		AmountA:  amountA,
		AmountB:  amountB,
		LPMinted: minted,
		Pool:     *pool,
		Deltas: []model.Delta{
			model.DebitOf(owner, pool.MintA, amountA),
			model.CreditOf(pool.Authority, pool.MintA, amountA),
			model.DebitOf(owner, pool.MintB, amountB),
			model.CreditOf(pool.Authority, pool.MintB, amountB),
			model.CreditOf(owner, pool.LiquidityMint, minted),
		},
	}, nil
}

// depositAmounts fits the desired pair to the reserve ratio: dy = Y*dx/X, else
// dx = X*dy/Y.
func depositAmounts(pool model.Pool, desiredA, desiredB uint64) (uint64, uint64, error) {
	if pool.Empty() {
		return desiredA, desiredB, nil
	}

	optimalB, err := safemath.MulDiv(desiredA, pool.ReserveB, pool.ReserveA)
	if err != nil && !errors.Is(err, safemath.ErrOverflow) {
		return 0, 0, mapDivision(err)
	}
	if err == nil && optimalB <= desiredB {
		return desiredA, optimalB, nil
	}

	optimalA, err := safemath.MulDiv(desiredB, pool.ReserveA, pool.ReserveB)
	if err != nil {
		return 0, 0, mapDivision(err)
	}
	if optimalA > desiredA {
		return 0, 0, ErrSlippageExceeded
	}
	return optimalA, desiredB, nil
}

// WithdrawLiquidity burns lpTokens from owner's position and pays out the pro-rata
// share of both reserves.
func (e *Engine) WithdrawLiquidity(poolID, owner model.Address, lpTokens uint64) (WithdrawResult, error) {
	pool, err := e.getPool(poolID)
	if err != nil {
		return WithdrawResult{}, err
	}
	if lpTokens == 0 {
		return WithdrawResult{}, ErrZeroAmount
	}

	key := positionKey{pool: poolID, owner: owner}
	pos, ok := e.positions[key]
	if !ok || pos.LPTokens < lpTokens {
		return WithdrawResult{}, ErrInsufficientBalance
	}
	if pool.TotalLiquidity == 0 {
		return WithdrawResult{}, ErrEmptyPool
	}

	amountA, err := safemath.MulDiv(pool.ReserveA, lpTokens, pool.TotalLiquidity)
	if err != nil {
		return WithdrawResult{}, mapDivision(err)
	}
	amountB, err := safemath.MulDiv(pool.ReserveB, lpTokens, pool.TotalLiquidity)
	if err != nil {
		return WithdrawResult{}, mapDivision(err)
	}
	reserveA, err := safemath.Sub(pool.ReserveA, amountA)
	if err != nil {
		return WithdrawResult{}, err
	}
	reserveB, err := safemath.Sub(pool.ReserveB, amountB)
	if err != nil {
		return WithdrawResult{}, err
	}
	total, err := safemath.Sub(pool.TotalLiquidity, lpTokens)
	if err != nil {
		return WithdrawResult{}, err
	}

	pool.ReserveA = reserveA
	pool.ReserveB = reserveB
	pool.TotalLiquidity = total
	if pos.LPTokens == lpTokens {
		delete(e.positions, key)
	} else {
		pos.LPTokens -= lpTokens
	}

	return WithdrawResult{
		AmountA:  amountA,
		AmountB:  amountB,
		LPBurned: lpTokens,
		Pool:     *pool,
		Deltas: []model.Delta{
			model.DebitOf(owner, pool.LiquidityMint, lpTokens),
			model.DebitOf(pool.Authority, pool.MintA, amountA),
			model.CreditOf(owner, pool.MintA, amountA),
			model.DebitOf(pool.Authority, pool.MintB, amountB),
			model.CreditOf(owner, pool.MintB, amountB),
		},
	}, nil
}
