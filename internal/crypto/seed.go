package crypto

import (
	"crypto/sha256"
	"errors"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	"zkl/internal/domain"
)

const (
	hkdfInfoLedger     = "zkl/identity/ledger/v1"
	hkdfInfoEncryption = "zkl/identity/encryption/v1"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewMnemonic returns a fresh 24-word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	defer Wipe(entropy)
	return bip39.NewMnemonic(entropy)
}

// NormalizeMnemonic trims and validates a user-supplied mnemonic.
func NormalizeMnemonic(mnemonic string) (string, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", ErrInvalidMnemonic
	}
	return mnemonic, nil
}

// DeriveIdentity deterministically derives the encryption and ledger key
// pairs from a mnemonic.
func DeriveIdentity(mnemonic string) (domain.Identity, error) {
	mnemonic, err := NormalizeMnemonic(mnemonic)
	if err != nil {
		return domain.Identity{}, err
	}
	seed := bip39.NewSeed(mnemonic, "")
	defer Wipe(seed)

	ledgerSeed, err := hkdfExpand(seed, hkdfInfoLedger, 32)
	if err != nil {
		return domain.Identity{}, err
	}
	defer Wipe(ledgerSeed)
	encSeed, err := hkdfExpand(seed, hkdfInfoEncryption, 32)
	if err != nil {
		return domain.Identity{}, err
	}
	defer Wipe(encSeed)

	var id domain.Identity
	id.LedgerPrivate, id.LedgerPublic = Ed25519FromSeed(ledgerSeed)
	id.EncryptionPrivate, id.EncryptionPublic, err = X25519FromSeed([32]byte(encSeed))
	if err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

func hkdfExpand(seed []byte, info string, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, seed, nil, []byte(info))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
