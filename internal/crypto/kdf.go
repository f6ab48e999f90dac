package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KDFParams are the Argon2id cost parameters stored next to a sealed seed.
type KDFParams struct {
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memoryKiB"`
	Threads uint8  `json:"threads"`
}

// DefaultKDFParams matches the parameters of existing zkl identities.
var DefaultKDFParams = KDFParams{Time: 3, Memory: 4096, Threads: 1}

const SaltBytes = 16

// NewSalt returns random salt for DeriveSealingKey.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveSealingKey stretches passphrase into the hex key EncryptPrivateKey expects.
func DeriveSealingKey(passphrase string, salt []byte, p KDFParams) (string, error) {
	if len(salt) != SaltBytes {
		return "", errors.New("invalid salt size")
	}
	k := argon2.IDKey([]byte(passphrase), salt, p.Time, p.Memory, p.Threads, sealKeyBytes)
	defer Wipe(k)
	return hex.EncodeToString(k), nil
}

// RandomSealingKey returns a random hex key for keyring-held identities.
func RandomSealingKey() (string, error) {
	k := make([]byte, sealKeyBytes)
	if _, err := rand.Read(k); err != nil {
		return "", err
	}
	defer Wipe(k)
	return hex.EncodeToString(k), nil
}
