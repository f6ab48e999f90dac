package store

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
)

const (
	idFilename      = "identity.json"
	identityVersion = 1

	keyStorePassphrase = "passphrase"
	keyStorePlatform   = "platform"
)

// identityFile is the on-disk form. The mnemonic is sealed with
// crypto.EncryptPrivateKey under a key stretched from the passphrase, or
// under a random key held in the platform keyring.
type identityFile struct {
	Version  int                 `json:"version"`
	Meta     domain.IdentityMeta `json:"meta"`
	KeyStore string              `json:"keyStore"`
	Salt     string              `json:"salt,omitempty"`
	KDF      *crypto.KDFParams   `json:"kdf,omitempty"`
	Sealed   string              `json:"sealed"`
}

// IdentityFileStore persists the local identity to disk.
type IdentityFileStore struct {
	dir  string
	keys domain.PrivateKeyStore
	kdf  crypto.KDFParams
	mu   sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir. keys may
// be nil, in which case an empty passphrase is rejected.
func NewIdentityFileStore(dir string, keys domain.PrivateKeyStore) *IdentityFileStore {
	return &IdentityFileStore{dir: dir, keys: keys, kdf: crypto.DefaultKDFParams}
}

// WithKDF overrides the Argon2id parameters used for new identities.
func (s *IdentityFileStore) WithKDF(p crypto.KDFParams) *IdentityFileStore {
	s.kdf = p
	return s
}

// SaveSeed seals seed and writes it with meta. An empty passphrase stores
// a random sealing key in the platform keyring instead.
func (s *IdentityFileStore) SaveSeed(passphrase string, seed []byte, meta domain.IdentityMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := identityFile{Version: identityVersion, Meta: meta}
	var key string
	if passphrase == "" {
		if s.keys == nil {
			return apperr.InvalidInput("a passphrase is required without a platform keyring")
		}
		k, err := crypto.RandomSealingKey()
		if err != nil {
			return err
		}
		if err := s.keys.Set(keyAccount(meta), k); err != nil {
			return err
		}
		key = k
		f.KeyStore = keyStorePlatform
	} else {
		salt, err := crypto.NewSalt()
		if err != nil {
			return err
		}
		kdf := s.kdf
		k, err := crypto.DeriveSealingKey(passphrase, salt, kdf)
		if err != nil {
			return err
		}
		key = k
		f.KeyStore = keyStorePassphrase
		f.Salt = hex.EncodeToString(salt)
		f.KDF = &kdf
	}

	sealed, err := crypto.EncryptPrivateKey(seed, key)
	if err != nil {
		return err
	}
	f.Sealed = sealed
	return saveState(filepath.Join(s.dir, idFilename), f)
}

// LoadSeed unseals the stored seed. A wrong passphrase yields
// apperr.ErrAuthenticationFailed.
func (s *IdentityFileStore) LoadSeed(passphrase string) ([]byte, domain.IdentityMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, domain.IdentityMeta{}, err
	}

	var key string
	switch f.KeyStore {
	case keyStorePlatform:
		if s.keys == nil {
			return nil, domain.IdentityMeta{}, apperr.InvalidInput("identity is sealed in the platform keyring")
		}
		if key, err = s.keys.Get(keyAccount(f.Meta)); err != nil {
			return nil, domain.IdentityMeta{}, err
		}
	case keyStorePassphrase:
		salt, err := hex.DecodeString(f.Salt)
		if err != nil || f.KDF == nil {
			return nil, domain.IdentityMeta{}, fmt.Errorf("identity file: bad kdf header")
		}
		if key, err = crypto.DeriveSealingKey(passphrase, salt, *f.KDF); err != nil {
			return nil, domain.IdentityMeta{}, err
		}
	default:
		return nil, domain.IdentityMeta{}, fmt.Errorf("identity file: unknown key store %q", f.KeyStore)
	}

	seed, err := crypto.DecryptPrivateKey(f.Sealed, key)
	if err != nil {
		return nil, domain.IdentityMeta{}, err
	}
	return seed, f.Meta, nil
}

// Meta returns the public identity metadata without unsealing.
func (s *IdentityFileStore) Meta() (domain.IdentityMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return domain.IdentityMeta{}, err
	}
	return f.Meta, nil
}

func (s *IdentityFileStore) read() (identityFile, error) {
	path := filepath.Join(s.dir, idFilename)
	var f identityFile
	ok, err := loadState(path, &f)
	if err != nil {
		return f, fmt.Errorf("identity file: %w", err)
	}
	if !ok {
		return f, apperr.With(apperr.ErrNotFound, fmt.Errorf("no identity at %s", path))
	}
	if f.Version != identityVersion {
		return f, fmt.Errorf("identity file: unsupported version %d", f.Version)
	}
	return f, nil
}

func keyAccount(meta domain.IdentityMeta) string {
	return fmt.Sprintf("%s/%d", meta.LedgerAddress, meta.RegistryIndex)
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
