package store

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"zkl/internal/apperr"
	"zkl/internal/domain"
)

// KeyringService is the service name zkl entries are stored under.
const KeyringService = "zkl"

// PlatformKeyStore keeps sealing keys in the OS keyring.
type PlatformKeyStore struct {
	Service string
}

func NewPlatformKeyStore() *PlatformKeyStore {
	return &PlatformKeyStore{Service: KeyringService}
}

func (s *PlatformKeyStore) Get(account string) (string, error) {
	secret, err := keyring.Get(s.Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", apperr.With(apperr.ErrNotFound, fmt.Errorf("keyring entry %s", account))
	}
	if err != nil {
		return "", fmt.Errorf("unable to get secret from platform store: %w", err)
	}
	return secret, nil
}

func (s *PlatformKeyStore) Set(account, key string) error {
	if err := keyring.Set(s.Service, account, key); err != nil {
		return fmt.Errorf("unable to save key to platform store: %w", err)
	}
	return nil
}

func (s *PlatformKeyStore) Delete(account string) error {
	err := keyring.Delete(s.Service, account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("unable to delete key from platform store: %w", err)
	}
	return nil
}

var _ domain.PrivateKeyStore = (*PlatformKeyStore)(nil)
