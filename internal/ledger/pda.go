package ledger

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"zkl/internal/domain"
)

const (
	maxSeeds   = 16
	maxSeedLen = 32
)

var (
	pdaMarker = []byte("ProgramDerivedAddress")

	// ErrOnCurve means the candidate address is a valid ed25519 point and
	// could therefore have a private key.
	ErrOnCurve = errors.New("derived address is on the ed25519 curve")
)

// CreateProgramAddress hashes seeds with programID. It fails if the result
// lies on the ed25519 curve.
func CreateProgramAddress(seeds [][]byte, programID domain.Address) (domain.Address, error) {
	if len(seeds) > maxSeeds {
		return domain.Address{}, fmt.Errorf("pda: %d seeds, max %d", len(seeds), maxSeeds)
	}
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > maxSeedLen {
			return domain.Address{}, fmt.Errorf("pda: seed of %d bytes, max %d", len(s), maxSeedLen)
		}
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write(pdaMarker)

	var out domain.Address
	copy(out[:], h.Sum(nil))
	if onCurve(out[:]) {
		return domain.Address{}, ErrOnCurve
	}
	return out, nil
}

// FindProgramAddress returns the first off-curve address for seeds,
// searching the bump seed downward from 255.
func FindProgramAddress(seeds [][]byte, programID domain.Address) (domain.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return domain.Address{}, 0, err
		}
	}
	return domain.Address{}, 0, errors.New("pda: no viable bump seed")
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
