// Package safemath provides overflow-checked uint64 arithmetic with 256-bit
// intermediates for the pool and stake accounting.
package safemath

import (
	"errors"

	gmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrDivisionByZero = errors.New("division by zero")
)

func Add(a, b uint64) (uint64, error) {
	sum, overflow := gmath.SafeAdd(a, b)
	if overflow {
		return 0, ErrOverflow
	}
	return sum, nil
}

func Sub(a, b uint64) (uint64, error) {
	diff, underflow := gmath.SafeSub(a, b)
	if underflow {
		return 0, ErrOverflow
	}
	return diff, nil
}

// MulDiv returns floor(a*b/c). The product is never truncated; only a quotient that
// does not fit in 64 bits overflows.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivisionByZero
	}
	var z uint256.Int
	z.Mul(uint256.NewInt(a), uint256.NewInt(b))
	z.Div(&z, uint256.NewInt(c))
	if !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

// MulMulDiv returns floor(a*b*c/d).
func MulMulDiv(a, b, c, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	var z uint256.Int
	z.Mul(uint256.NewInt(a), uint256.NewInt(b))
	z.Mul(&z, uint256.NewInt(c))
	z.Div(&z, uint256.NewInt(d))
	if !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

// SqrtProduct returns floor(sqrt(a*b)), which always fits in 64 bits.
func SqrtProduct(a, b uint64) uint64 {
	var z uint256.Int
	z.Mul(uint256.NewInt(a), uint256.NewInt(b))
	z.Sqrt(&z)
	return z.Uint64()
}
