// Package derive computes deterministic account identifiers from ordered seeds, in the
// manner of program-derived addresses.
package derive

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"ammledger/internal/model"
)

const (
	MaxSeedLength = 32
	MaxSeeds      = 16

	domainMarker = "ProgramDerivedAddress"
)

var (
	ErrSeedTooLong  = errors.New("seed too long")
	ErrTooManySeeds = errors.New("too many seeds")
)

// Derive hashes the length-prefixed namespace and seeds with Keccak-256. The same
// (namespace, seeds) always yields the same address; length prefixes keep
// ["ab","c"] and ["a","bc"] apart.
func Derive(namespace string, seeds ...[]byte) (model.Address, error) {
	if len(namespace) > MaxSeedLength {
		return model.Address{}, fmt.Errorf("%w: namespace has %d bytes", ErrSeedTooLong, len(namespace))
	}
	if len(seeds) > MaxSeeds {
		return model.Address{}, fmt.Errorf("%w: %d seeds", ErrTooManySeeds, len(seeds))
	}

	buf := make([]byte, 0, 2+len(namespace)+len(seeds)*(2+MaxSeedLength)+len(domainMarker))
	buf = appendPrefixed(buf, []byte(namespace))
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return model.Address{}, fmt.Errorf("%w: seed %d has %d bytes", ErrSeedTooLong, i, len(seed))
		}
		buf = appendPrefixed(buf, seed)
	}
	buf = append(buf, domainMarker...)

	var addr model.Address
	copy(addr[:], crypto.Keccak256(buf))
	return addr, nil
}

func appendPrefixed(buf []byte, value []byte) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(value)))
	return append(buf, value...)
}

// mustDerive is for seed layouts built from fixed-size addresses and short literals,
// which cannot exceed the limits.
func mustDerive(namespace string, seeds ...[]byte) model.Address {
	addr, err := Derive(namespace, seeds...)
	if err != nil {
		panic(err)
	}
	return addr
}
