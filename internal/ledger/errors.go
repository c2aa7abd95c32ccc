package ledger

import (
	"errors"

	"ammledger/internal/amm"
	"ammledger/internal/derive"
	"ammledger/internal/safemath"
	"ammledger/internal/stake"
)

var ErrUnknownOp = errors.New("unknown operation")

var errorCodes = []struct {
	err  error
	code string
}{
	{amm.ErrDuplicatePool, "duplicate_pool"},
	{amm.ErrPoolNotFound, "pool_not_found"},
	{amm.ErrInvalidFee, "invalid_fee"},
	{amm.ErrIdenticalMints, "identical_mints"},
	{amm.ErrInvalidDirection, "invalid_direction"},
	{amm.ErrZeroAmount, "zero_amount"},
	{amm.ErrSlippageExceeded, "slippage_exceeded"},
	{amm.ErrInsufficientLiquidity, "insufficient_liquidity"},
	{amm.ErrInsufficientBalance, "insufficient_balance"},
	{amm.ErrEmptyPool, "empty_pool"},
	{stake.ErrZeroAmount, "zero_amount"},
	{stake.ErrAlreadyInitialized, "already_initialized"},
	{stake.ErrVaultNotFound, "vault_not_found"},
	{stake.ErrAlreadyStaked, "already_staked"},
	{stake.ErrNotStaked, "not_staked"},
	{derive.ErrSeedTooLong, "seed_too_long"},
	{derive.ErrTooManySeeds, "too_many_seeds"},
	{safemath.ErrOverflow, "arithmetic_overflow"},
	{safemath.ErrDivisionByZero, "division_by_zero"},
	{ErrUnknownOp, "unknown_op"},
}

// ErrorCode maps an engine error to a stable snake_case code. Unrecognised errors
// return "internal"; nil returns "".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return "internal"
}
