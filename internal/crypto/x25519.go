package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"zkl/internal/apperr"
	"zkl/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateX25519() (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if _, err = rand.Read(priv[:]); err != nil {
		return
	}
	return X25519FromSeed(priv)
}

// X25519FromSeed clamps seed into a private key and derives its public key.
func X25519FromSeed(seed [32]byte) (priv domain.X25519Private, pub domain.X25519Public, err error) {
	priv = domain.X25519Private(seed)
	clamp(&priv)
	pub, err = PublicX25519(priv)
	return
}

// PublicX25519 returns the public key for priv.
func PublicX25519(priv domain.X25519Private) (pub domain.X25519Public, err error) {
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], pb)
	return pub, nil
}

// DH computes X25519 Diffie–Hellman. A low-order peer key, which would
// yield an all-zero secret, is rejected as invalid input.
func DH(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, apperr.Wrap(apperr.CodeInvalidInput, "x25519", fmt.Errorf("low-order public key: %w", err))
	}
	copy(out[:], secret)
	Wipe(secret)
	return out, nil
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
