package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"zkl/internal/apperr"
)

const sealKeyBytes = 32

// EncryptPrivateKey seals secret with a hex-encoded 32-byte key using
// AES-256-GCM and a random 96-bit nonce. The result is
// "nonceHex:ciphertextHex".
func EncryptPrivateKey(secret []byte, hexKey string) (string, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != sealKeyBytes {
		return "", apperr.With(apperr.ErrInvalidKeyLength, fmt.Errorf("sealing key must be %d hex-encoded bytes", sealKeyBytes))
	}
	defer Wipe(key)

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ct := gcm.Seal(nil, nonce, secret, nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ct), nil
}

// DecryptPrivateKey reverses EncryptPrivateKey. A malformed string, a key
// of the wrong length, or the wrong key all fail with
// apperr.ErrAuthenticationFailed.
func DecryptPrivateKey(sealed, hexKey string) ([]byte, error) {
	nonceHex, ctHex, ok := strings.Cut(sealed, ":")
	if !ok {
		return nil, apperr.ErrAuthenticationFailed
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != sealKeyBytes {
		return nil, apperr.ErrAuthenticationFailed
	}
	defer Wipe(key)

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return nil, apperr.ErrAuthenticationFailed
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return nil, apperr.ErrAuthenticationFailed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, apperr.ErrAuthenticationFailed
	}
	pt, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, apperr.ErrAuthenticationFailed
	}
	return pt, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
