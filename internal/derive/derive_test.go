package derive

import (
	"bytes"
	"errors"
	"testing"

	"ammledger/internal/model"
)

func TestDeriveDeterministic(t *testing.T) {
	first, err := Derive("amm", []byte("pool"), []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, err := Derive("amm", []byte("pool"), []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if first != second {
		t.Fatalf("derive not deterministic: %s != %s", first, second)
	}
}

func TestDeriveSeparatesBoundariesAndNamespaces(t *testing.T) {
	ab, _ := Derive("amm", []byte("ab"), []byte("c"))
	bc, _ := Derive("amm", []byte("a"), []byte("bc"))
	if ab == bc {
		t.Fatalf("seed boundaries collide")
	}

	inAmm, _ := Derive("amm", []byte("x"))
	inStake, _ := Derive("stake", []byte("x"))
	if inAmm == inStake {
		t.Fatalf("namespaces collide")
	}

	none, _ := Derive("amm")
	empty, _ := Derive("amm", []byte{})
	if none == empty {
		t.Fatalf("empty seed collides with no seeds")
	}
}

func TestDeriveLimits(t *testing.T) {
	if _, err := Derive("amm", bytes.Repeat([]byte{1}, MaxSeedLength)); err != nil {
		t.Fatalf("max length seed rejected: %v", err)
	}
	if _, err := Derive("amm", bytes.Repeat([]byte{1}, MaxSeedLength+1)); !errors.Is(err, ErrSeedTooLong) {
		t.Fatalf("expected ErrSeedTooLong, got %v", err)
	}

	seeds := make([][]byte, MaxSeeds+1)
	if _, err := Derive("amm", seeds...); !errors.Is(err, ErrTooManySeeds) {
		t.Fatalf("expected ErrTooManySeeds, got %v", err)
	}
}

func TestPoolAccountsDistinct(t *testing.T) {
	var amm, mintA, mintB model.Address
	amm[0], mintA[0], mintB[0] = 1, 2, 3

	pool := PoolAddress(amm, mintA, mintB)
	authority := PoolAuthority(amm, mintA, mintB)
	lpMint := LiquidityMint(amm, mintA, mintB)
	if pool == authority || pool == lpMint || authority == lpMint {
		t.Fatalf("pool accounts collide")
	}
	if PoolAddress(amm, mintB, mintA) == pool {
		t.Fatalf("mint order must matter")
	}
}
