package stake

import (
	"errors"

	"ammledger/internal/safemath"
)

var (
	ErrAlreadyInitialized = errors.New("reward vault already initialized")
	ErrVaultNotFound      = errors.New("reward vault not initialized")
	ErrZeroAmount         = errors.New("amount is zero")
	ErrAlreadyStaked      = errors.New("already staked")
	ErrNotStaked          = errors.New("not staked")
	ErrArithmeticOverflow = safemath.ErrOverflow
)
