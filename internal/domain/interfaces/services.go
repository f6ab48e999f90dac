package interfaces

import (
	"context"

	domaintypes "zkl/internal/domain/types"
)

// IdentityService creates, unlocks and registers the local identity.
type IdentityService interface {
	Create(passphrase string, index uint32) (domaintypes.Identity, string, error)
	Import(passphrase, mnemonic string, index uint32) (domaintypes.Identity, error)
	Unlock(passphrase string) (domaintypes.Identity, error)
	Fingerprint() (domaintypes.Fingerprint, error)
	Register(ctx context.Context, id domaintypes.Identity) (domaintypes.Address, error)
}

// SendService delivers an encrypted file to a recipient's inbox.
type SendService interface {
	Send(ctx context.Context, sender domaintypes.Identity, req domaintypes.SendRequest) (domaintypes.SendResult, error)
}
