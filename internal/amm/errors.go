package amm

import (
	"errors"

	"ammledger/internal/safemath"
)

var (
	ErrDuplicatePool         = errors.New("pool already exists")
	ErrPoolNotFound          = errors.New("pool does not exist")
	ErrInvalidFee            = errors.New("fee exceeds 10000 bps")
	ErrIdenticalMints        = errors.New("mint a and mint b are identical")
	ErrInvalidDirection      = errors.New("invalid swap direction")
	ErrZeroAmount            = errors.New("amount is zero")
	ErrSlippageExceeded      = errors.New("slippage exceeded")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInsufficientBalance   = errors.New("insufficient lp balance")
	ErrEmptyPool             = errors.New("pool reserves are empty")
	ErrArithmeticOverflow    = safemath.ErrOverflow
)

// mapDivision turns a division by an empty reserve or supply into ErrEmptyPool.
func mapDivision(err error) error {
	if errors.Is(err, safemath.ErrDivisionByZero) {
		return ErrEmptyPool
	}
	return err
}
