package amm

import (
	"ammledger/internal/model"
	"ammledger/internal/safemath"
)

// SwapQuote is the priced outcome of a swap against current reserves.
type SwapQuote struct {
	Direction        model.Direction `json:"direction"`
	MintIn           model.Address   `json:"mint_in"`
	MintOut          model.Address   `json:"mint_out"`
	AmountIn         uint64          `json:"amount_in"`
	Fee              uint64          `json:"fee"`
	AmountInAfterFee uint64          `json:"amount_in_after_fee"`
	AmountOut        uint64          `json:"amount_out"`
}

type SwapResult struct {
	SwapQuote
	Pool   model.Pool    `json:"pool"`
	Deltas []model.Delta `json:"-"`
}

// QuoteSwap prices a swap without changing state.
func (e *Engine) QuoteSwap(poolID model.Address, direction model.Direction, amountIn uint64) (SwapQuote, error) {
	pool, err := e.getPool(poolID)
	if err != nil {
		return SwapQuote{}, err
	}
	return quoteSwap(*pool, direction, amountIn)
}

// Swap trades amountIn of the input mint for at least minAmountOut of the other. The
// fee stays in the pool, so reserveA*reserveB never decreases.
func (e *Engine) Swap(poolID, trader model.Address, direction model.Direction, amountIn, minAmountOut uint64) (SwapResult, error) {
	pool, err := e.getPool(poolID)
	if err != nil {
		return SwapResult{}, err
	}
	quote, err := quoteSwap(*pool, direction, amountIn)
	if err != nil {
		return SwapResult{}, err
	}
	if quote.AmountOut < minAmountOut {
		return SwapResult{}, ErrSlippageExceeded
	}
	if quote.AmountOut == 0 {
		return SwapResult{}, ErrZeroAmount
	}

	reserveIn, reserveOut := reservesFor(*pool, direction)
	nextIn, err := safemath.Add(reserveIn, amountIn)
	if err != nil {
		return SwapResult{}, err
	}
	nextOut, err := safemath.Sub(reserveOut, quote.AmountOut)
	if err != nil {
		return SwapResult{}, err
	}

	if direction == model.AToB {
		pool.ReserveA, pool.ReserveB = nextIn, nextOut
	} else {
		pool.ReserveB, pool.ReserveA = nextIn, nextOut
	}

	return SwapResult{
		SwapQuote: quote,
		Pool:      *pool,
		Deltas: []model.Delta{
			model.DebitOf(trader, quote.MintIn, amountIn),
			model.CreditOf(pool.Authority, quote.MintIn, amountIn),
			model.DebitOf(pool.Authority, quote.MintOut, quote.AmountOut),
			model.CreditOf(trader, quote.MintOut, quote.AmountOut),
		},
	}, nil
}

// quoteSwap applies out = Y*dx'/(X+dx') with dx' = dx*(10000-fee)/10000.
func quoteSwap(pool model.Pool, direction model.Direction, amountIn uint64) (SwapQuote, error) {
	if !direction.Valid() {
		return SwapQuote{}, ErrInvalidDirection
	}
	if amountIn == 0 {
		return SwapQuote{}, ErrZeroAmount
	}
	reserveIn, reserveOut := reservesFor(pool, direction)
	if reserveIn == 0 || reserveOut == 0 {
		return SwapQuote{}, ErrEmptyPool
	}

	afterFee, err := safemath.MulDiv(amountIn, uint64(model.MaxFeeBps-pool.FeeBps), model.MaxFeeBps)
	if err != nil {
		return SwapQuote{}, err
	}
	denominator, err := safemath.Add(reserveIn, afterFee)
	if err != nil {
		return SwapQuote{}, err
	}
	amountOut, err := safemath.MulDiv(reserveOut, afterFee, denominator)
	if err != nil {
		return SwapQuote{}, mapDivision(err)
	}
	if amountOut >= reserveOut {
		return SwapQuote{}, ErrInsufficientLiquidity
	}

	mintIn, mintOut := pool.MintA, pool.MintB
	if direction == model.BToA {
		mintIn, mintOut = pool.MintB, pool.MintA
	}
	return SwapQuote{
		Direction:        direction,
		MintIn:           mintIn,
		MintOut:          mintOut,
		AmountIn:         amountIn,
		Fee:              amountIn - afterFee,
		AmountInAfterFee: afterFee,
		AmountOut:        amountOut,
	}, nil
}

func reservesFor(pool model.Pool, direction model.Direction) (uint64, uint64) {
	if direction == model.BToA {
		return pool.ReserveB, pool.ReserveA
	}
	return pool.ReserveA, pool.ReserveB
}
