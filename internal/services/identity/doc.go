// Package identity manages creation, sealing, unlocking and registration of
// the local identity.
//
// An identity is derived from a BIP-39 mnemonic. The mnemonic is the only
// secret written to disk, sealed via the domain.IdentityStore. Registration
// publishes the encryption key to the registry program and initializes the
// matching inbox so that others can send to it.
package identity
