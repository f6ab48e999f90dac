package types

import (
	"fmt"

	"github.com/mr-tron/base58"

	"zkl/internal/apperr"
)

// AddressSize is the length of a ledger address in bytes.
const AddressSize = 32

// Address identifies a ledger account. For signer accounts it is the
// account's ed25519 public key.
type Address [AddressSize]byte

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, apperr.With(apperr.ErrInvalidAddress, fmt.Errorf("%q: %w", s, err))
	}
	return AddressFromBytes(raw)
}

// AddressFromBytes copies b into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, apperr.With(apperr.ErrInvalidAddress, fmt.Errorf("got %d bytes, want %d", len(b), AddressSize))
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress for constants; it panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string { return base58.Encode(a[:]) }

// Slice returns the address as a []byte.
func (a Address) Slice() []byte { return a[:] }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
