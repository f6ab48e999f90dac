package types

// RegistryRecord binds an encryption public key to a ledger owner.
type RegistryRecord struct {
	Address             Address
	EncryptionPublicKey X25519Public
	Owner               Address
	Index               uint32
	Bump                uint8
	Signature           [64]byte
}
