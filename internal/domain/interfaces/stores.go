package interfaces

import domaintypes "zkl/internal/domain/types"

// IdentityStore persists the sealed identity seed.
type IdentityStore interface {
	SaveSeed(passphrase string, seed []byte, meta domaintypes.IdentityMeta) error
	LoadSeed(passphrase string) ([]byte, domaintypes.IdentityMeta, error)
	Meta() (domaintypes.IdentityMeta, error)
}

// PrivateKeyStore holds the key that seals the identity when no
// passphrase is used.
type PrivateKeyStore interface {
	Get(account string) (string, error)
	Set(account, key string) error
	Delete(account string) error
}

// SendJournal records send progress so an interrupted send can resume.
type SendJournal interface {
	Get(key string) (domaintypes.SendJournalEntry, bool, error)
	Put(entry domaintypes.SendJournalEntry) error
	Delete(key string) error
}
