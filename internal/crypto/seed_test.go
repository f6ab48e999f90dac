package crypto_test

import (
	"strings"
	"testing"

	"zkl/internal/crypto"
)

func TestDeriveIdentity_Deterministic(t *testing.T) {
	m, err := crypto.NewMnemonic()
	if err != nil {
		t.Fatalf("mnemonic: %v", err)
	}
	if n := len(strings.Fields(m)); n != 24 {
		t.Fatalf("mnemonic has %d words, want 24", n)
	}

	a, err := crypto.DeriveIdentity(m)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := crypto.DeriveIdentity("  " + strings.ReplaceAll(m, " ", "   ") + "\n")
	if err != nil {
		t.Fatalf("derive normalized: %v", err)
	}
	if a.EncryptionPublic != b.EncryptionPublic || a.LedgerPublic != b.LedgerPublic {
		t.Fatal("derivation is not deterministic")
	}

	pub, err := crypto.PublicX25519(a.EncryptionPrivate)
	if err != nil || pub != a.EncryptionPublic {
		t.Fatal("encryption key pair mismatch")
	}
	msg := []byte("ZKLAccount:test")
	if !crypto.VerifyEd25519(a.LedgerPublic, msg, crypto.SignEd25519(a.LedgerPrivate, msg)) {
		t.Fatal("ledger key pair mismatch")
	}
}

func TestDeriveIdentity_InvalidMnemonic(t *testing.T) {
	if _, err := crypto.DeriveIdentity("not a real mnemonic at all"); err != crypto.ErrInvalidMnemonic {
		t.Fatalf("got %v, want ErrInvalidMnemonic", err)
	}
}
