package types

import (
	"encoding/hex"
	"fmt"

	"zkl/internal/apperr"
)

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

func (p X25519Public) String() string { return hex.EncodeToString(p[:]) }

func (p X25519Public) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *X25519Public) UnmarshalText(b []byte) error {
	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return apperr.With(apperr.ErrInvalidKeyLength, err)
	}
	k, err := X25519PublicFromBytes(raw)
	if err != nil {
		return err
	}
	*p = k
	return nil
}

// X25519PublicFromBytes copies b into a key, rejecting any other length.
func X25519PublicFromBytes(b []byte) (X25519Public, error) {
	var k X25519Public
	if len(b) != len(k) {
		return k, apperr.With(apperr.ErrInvalidKeyLength, fmt.Errorf("x25519 public key: got %d bytes", len(b)))
	}
	copy(k[:], b)
	return k, nil
}

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing private key.
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// KeyTypeX25519 prefixes an X25519 key in its on-ledger encoding.
const KeyTypeX25519 byte = 0x01

// EncodedKeySize is the on-ledger size of a typed public key.
const EncodedKeySize = 33

// EncodedKey is a public key as stored in registry and inbox accounts:
// one key-type byte followed by the 32 key bytes.
type EncodedKey [EncodedKeySize]byte

// EncodeX25519 returns the on-ledger form of pub.
func EncodeX25519(pub X25519Public) EncodedKey {
	var k EncodedKey
	k[0] = KeyTypeX25519
	copy(k[1:], pub[:])
	return k
}

// EncodedKeyFromBytes copies b into an EncodedKey.
func EncodedKeyFromBytes(b []byte) (EncodedKey, error) {
	var k EncodedKey
	if len(b) != EncodedKeySize {
		return k, apperr.With(apperr.ErrInvalidKeyLength, fmt.Errorf("encoded key: got %d bytes, want %d", len(b), EncodedKeySize))
	}
	copy(k[:], b)
	return k, nil
}

// X25519 decodes the 32-byte key, failing on an unknown key type.
func (k EncodedKey) X25519() (X25519Public, error) {
	if k[0] != KeyTypeX25519 {
		return X25519Public{}, apperr.InvalidInput(fmt.Sprintf("unsupported key type 0x%02x", k[0]))
	}
	var pub X25519Public
	copy(pub[:], k[1:])
	return pub, nil
}

// Slice returns the key as a []byte.
func (k EncodedKey) Slice() []byte { return k[:] }

// Fingerprint is a short, human-comparable digest of a public key.
type Fingerprint string

func (k EncodedKey) MarshalText() ([]byte, error) { return []byte(hex.EncodeToString(k[:])), nil }

func (k *EncodedKey) UnmarshalText(b []byte) error {
	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return apperr.With(apperr.ErrInvalidKeyLength, err)
	}
	parsed, err := EncodedKeyFromBytes(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
