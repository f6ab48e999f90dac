package receive

import (
	"context"
	"fmt"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
)

// Service lists and opens inbox messages.
type Service struct {
	inbox   domain.InboxWriter
	content domain.ContentStore
}

func New(inbox domain.InboxWriter, content domain.ContentStore) *Service {
	return &Service{inbox: inbox, content: content}
}

// List returns the records in id's inbox, oldest first.
func (s *Service) List(ctx context.Context, id domain.Identity) ([]domain.FileTxRecord, error) {
	acc, err := s.inbox.Fetch(ctx, id.Address(), id.RegistryIndex)
	if err != nil {
		return nil, err
	}
	return acc.Messages, nil
}

// Open fetches and decrypts message n (zero-based) of id's inbox.
func (s *Service) Open(ctx context.Context, id domain.Identity, n int) ([]byte, domain.FileTxRecord, error) {
	msgs, err := s.List(ctx, id)
	if err != nil {
		return nil, domain.FileTxRecord{}, err
	}
	if n < 0 || n >= len(msgs) {
		return nil, domain.FileTxRecord{}, apperr.InvalidInput(fmt.Sprintf("message %d out of range (inbox holds %d)", n, len(msgs)))
	}
	r := msgs[n]
	ct, err := s.content.Cat(ctx, r.EncryptedLink)
	if err != nil {
		return nil, r, fmt.Errorf("fetch %s: %w", r.EncryptedLink, err)
	}
	pt, err := crypto.Decrypt(ct, r.EphemeralPubkey, id.EncryptionPrivate)
	if err != nil {
		return nil, r, err
	}
	return pt, r, nil
}
