package model

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLength is the size of every account identifier in bytes.
const AddressLength = 32

// Address identifies a mint, an owner or a derived account. Its text form is base58.
type Address [AddressLength]byte

// ParseAddress decodes a base58 address.
func ParseAddress(input string) (Address, error) {
	raw, err := base58.Decode(input)
	if err != nil {
		return Address{}, fmt.Errorf("decode address %q: %w", input, err)
	}
	if len(raw) != AddressLength {
		return Address{}, fmt.Errorf("invalid address length %d: %s", len(raw), input)
	}
	var addr Address
	copy(addr[:], raw)
	return addr, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Compare orders addresses bytewise.
func (a Address) Compare(other Address) int {
	return bytes.Compare(a[:], other[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
