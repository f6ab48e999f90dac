package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = apperr.InvalidInput(fmt.Sprintf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	))
)

// Service manages the identity lifecycle using a backing store.
//
// The identity contains:
//   - X25519 key pair that files are encrypted to.
//   - Ed25519 key pair that controls the ledger account and signs the
//     registry binding.
//
// Both are derived from the mnemonic, so the mnemonic alone recovers them.
type Service struct {
	store    domain.IdentityStore
	registry domain.RegistryClient
	inbox    domain.InboxWriter
	log      *slog.Logger
	now      func() time.Time
}

// New returns an identity service. registry and inbox may be nil for
// offline use, in which case Register fails.
func New(s domain.IdentityStore, registry domain.RegistryClient, inbox domain.InboxWriter, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: s, registry: registry, inbox: inbox, log: log, now: time.Now}
}

// Create generates a fresh mnemonic, seals it with passphrase and returns
// the identity at index together with the mnemonic for backup. An empty
// passphrase defers sealing to the store's platform keyring.
func (s *Service) Create(passphrase string, index uint32) (domain.Identity, string, error) {
	if passphrase != "" && !isSecurePassphrase(passphrase) {
		return domain.Identity{}, "", ErrWeakPassphrase
	}
	mnemonic, err := crypto.NewMnemonic()
	if err != nil {
		return domain.Identity{}, "", err
	}
	id, err := s.save(passphrase, mnemonic, index)
	if err != nil {
		return domain.Identity{}, "", err
	}
	return id, mnemonic, nil
}

// Import restores an identity from an existing mnemonic.
func (s *Service) Import(passphrase, mnemonic string, index uint32) (domain.Identity, error) {
	if passphrase != "" && !isSecurePassphrase(passphrase) {
		return domain.Identity{}, ErrWeakPassphrase
	}
	normalized, err := crypto.NormalizeMnemonic(mnemonic)
	if err != nil {
		return domain.Identity{}, apperr.Wrap(apperr.CodeInvalidInput, "invalid mnemonic", err)
	}
	return s.save(passphrase, normalized, index)
}

func (s *Service) save(passphrase, mnemonic string, index uint32) (domain.Identity, error) {
	id, err := crypto.DeriveIdentity(mnemonic)
	if err != nil {
		return domain.Identity{}, err
	}
	id.RegistryIndex = index
	meta := domain.IdentityMeta{
		EncryptionPublicKey: id.EncryptionPublic,
		LedgerAddress:       id.Address(),
		RegistryIndex:       index,
		CreatedAt:           s.now().UTC(),
	}
	if err := s.store.SaveSeed(passphrase, []byte(mnemonic), meta); err != nil {
		return domain.Identity{}, err
	}
	s.log.Info("identity created", "address", id.Address(), "index", index, "fingerprint", crypto.Fingerprint(id.EncryptionPublic.Slice()))
	return id, nil
}

// Unlock unseals the stored mnemonic and re-derives the identity.
func (s *Service) Unlock(passphrase string) (domain.Identity, error) {
	seed, meta, err := s.store.LoadSeed(passphrase)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.Wipe(seed)

	id, err := crypto.DeriveIdentity(string(seed))
	if err != nil {
		return domain.Identity{}, err
	}
	if id.Address() != meta.LedgerAddress {
		return domain.Identity{}, apperr.Internal("stored identity metadata does not match its seed", nil)
	}
	id.RegistryIndex = meta.RegistryIndex
	return id, nil
}

// Fingerprint returns a short fingerprint of the local encryption key. It
// reads only public metadata and needs no passphrase.
func (s *Service) Fingerprint() (domain.Fingerprint, error) {
	meta, err := s.store.Meta()
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(meta.EncryptionPublicKey.Slice()), nil
}

// Register publishes id to the registry and initializes its inbox. It is
// safe to re-run: an existing registration carrying the same key is
// accepted and the inbox step still runs.
func (s *Service) Register(ctx context.Context, id domain.Identity) (domain.Address, error) {
	if s.registry == nil || s.inbox == nil {
		return domain.Address{}, apperr.New(apperr.CodeUnavailable, "no ledger configured")
	}
	addr, err := s.registry.Register(ctx, id, id.RegistryIndex)
	if errors.Is(err, apperr.ErrAlreadyRegistered) {
		key, rerr := s.registry.Resolve(ctx, id.Address(), id.RegistryIndex)
		if rerr != nil {
			return domain.Address{}, rerr
		}
		if key != id.EncryptionPublic {
			return addr, err
		}
		s.log.Info("identity already registered", "record", addr, "index", id.RegistryIndex)
	} else if err != nil {
		return domain.Address{}, err
	}

	inbox, err := s.inbox.Initialize(ctx, id, id.RegistryIndex)
	if err != nil {
		return addr, fmt.Errorf("initialize inbox: %w", err)
	}
	s.log.Info("inbox ready", "inbox", inbox, "index", id.RegistryIndex)
	return addr, nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
