package crypto

import (
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"zkl/internal/apperr"
	"zkl/internal/domain"
)

const (
	eciesVersion byte = 0x01
	eciesInfo         = "zkl/ecies/v1"
)

// Encrypt seals plaintext for recipient under a fresh ephemeral X25519 key.
//
// The AEAD key and nonce are expanded by HKDF-SHA256 from the shared secret,
// salted with ephemeralPub || recipientPub so the ciphertext is bound to
// both keys. The ephemeral private key is wiped before returning and never
// leaves this function. The output is one version byte followed by the
// ChaCha20-Poly1305 ciphertext and tag.
func Encrypt(recipient domain.X25519Public, plaintext []byte) (ciphertext []byte, ephemeral domain.X25519Public, err error) {
	ephPriv, ephPub, err := GenerateX25519()
	if err != nil {
		return nil, ephemeral, err
	}
	defer Wipe(ephPriv[:])

	aead, nonce, err := eciesAEAD(ephPriv, recipient, ephPub, recipient)
	if err != nil {
		return nil, ephemeral, err
	}
	out := make([]byte, 1, 1+len(plaintext)+aead.Overhead())
	out[0] = eciesVersion
	out = aead.Seal(out, nonce, plaintext, eciesAD(ephPub, recipient))
	return out, ephPub, nil
}

// Decrypt opens a ciphertext produced by Encrypt. Any mismatch of key,
// ephemeral key, or ciphertext bytes fails with apperr.ErrAuthenticationFailed.
func Decrypt(ciphertext []byte, ephemeral domain.X25519Public, recipientPriv domain.X25519Private) ([]byte, error) {
	if len(ciphertext) < 1+chacha20poly1305.Overhead || ciphertext[0] != eciesVersion {
		return nil, apperr.ErrAuthenticationFailed
	}
	recipientPub, err := PublicX25519(recipientPriv)
	if err != nil {
		return nil, err
	}
	aead, nonce, err := eciesAEAD(recipientPriv, ephemeral, ephemeral, recipientPub)
	if err != nil {
		return nil, apperr.With(apperr.ErrAuthenticationFailed, err)
	}
	pt, err := aead.Open(nil, nonce, ciphertext[1:], eciesAD(ephemeral, recipientPub))
	if err != nil {
		return nil, apperr.ErrAuthenticationFailed
	}
	return pt, nil
}

func eciesAEAD(priv domain.X25519Private, peer, ephPub, recipientPub domain.X25519Public) (cipher.AEAD, []byte, error) {
	shared, err := DH(priv, peer)
	if err != nil {
		return nil, nil, err
	}
	defer Wipe(shared[:])

	okm := make([]byte, chacha20poly1305.KeySize+chacha20poly1305.NonceSize)
	defer Wipe(okm)
	r := hkdf.New(sha256.New, shared[:], eciesAD(ephPub, recipientPub), []byte(eciesInfo))
	if _, err := io.ReadFull(r, okm); err != nil {
		return nil, nil, fmt.Errorf("hkdf: %w", err)
	}
	aead, err := chacha20poly1305.New(okm[:chacha20poly1305.KeySize])
	if err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	copy(nonce, okm[chacha20poly1305.KeySize:])
	return aead, nonce, nil
}

func eciesAD(ephPub, recipientPub domain.X25519Public) []byte {
	ad := make([]byte, 0, 64)
	ad = append(ad, ephPub[:]...)
	return append(ad, recipientPub[:]...)
}
