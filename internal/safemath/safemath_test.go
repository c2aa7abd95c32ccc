package safemath

import (
	"errors"
	"math"
	"testing"
)

func TestMulDivWideIntermediate(t *testing.T) {
	got, err := MulDiv(math.MaxUint64, math.MaxUint64, math.MaxUint64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != math.MaxUint64 {
		t.Fatalf("muldiv mismatch: %d", got)
	}

	if _, err := MulDiv(math.MaxUint64, 2, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := MulDiv(1, 1, 0); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
}

func TestMulDivFloors(t *testing.T) {
	got, err := MulDiv(182, 9, 119)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 13 {
		t.Fatalf("expected 13, got %d", got)
	}
}

func TestSqrtProduct(t *testing.T) {
	cases := []struct {
		a, b, want uint64
	}{
		{0, 5, 0},
		{1, 1, 1},
		{100, 200, 141},
		{3, 3, 3},
		{math.MaxUint64, math.MaxUint64, math.MaxUint64},
	}
	for _, tc := range cases {
		if got := SqrtProduct(tc.a, tc.b); got != tc.want {
			t.Fatalf("sqrt(%d*%d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestAddSubOverflow(t *testing.T) {
	if _, err := Add(math.MaxUint64, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected add overflow, got %v", err)
	}
	if _, err := Sub(1, 2); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected sub underflow, got %v", err)
	}
}
