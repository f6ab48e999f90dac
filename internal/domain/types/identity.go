package types

import "time"

// Identity is the unlocked key material of a local user.
type Identity struct {
	EncryptionPublic  X25519Public
	EncryptionPrivate X25519Private
	LedgerPublic      Ed25519Public
	LedgerPrivate     Ed25519Private
	RegistryIndex     uint32
}

// Address returns the ledger account controlled by the identity.
func (id Identity) Address() Address { return Address(id.LedgerPublic) }

// IdentityMeta is the public part of a stored identity. It is readable
// without the passphrase.
type IdentityMeta struct {
	EncryptionPublicKey X25519Public `json:"encryptionPublicKey"`
	LedgerAddress       Address      `json:"ledgerAddress"`
	RegistryIndex       uint32       `json:"registryIndex"`
	CreatedAt           time.Time    `json:"createdAt"`
}
