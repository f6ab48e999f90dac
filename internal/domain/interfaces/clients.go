package interfaces

import (
	"context"

	domaintypes "zkl/internal/domain/types"
)

// RegistryClient binds identities to encryption keys on the ledger.
type RegistryClient interface {
	DeriveAddress(owner domaintypes.Address, index uint32) (domaintypes.Address, uint8, error)
	Register(ctx context.Context, id domaintypes.Identity, index uint32) (domaintypes.Address, error)
	Resolve(ctx context.Context, owner domaintypes.Address, index uint32) (domaintypes.X25519Public, error)
}

// ContentStore publishes ciphertext under a content identifier.
type ContentStore interface {
	Add(ctx context.Context, data []byte) (string, error)
	Pin(ctx context.Context, cid string) error
	Cat(ctx context.Context, cid string) ([]byte, error)
}

// RelayClient carries a payload from the home chain to a destination chain.
// Await and Deliver advance the state recorded on the handle.
type RelayClient interface {
	PrepareAttest(signer domaintypes.Identity, payload []byte) (domaintypes.Transaction, error)
	SubmitAttest(ctx context.Context, tx domaintypes.Transaction) (domaintypes.AttestationHandle, error)
	Await(ctx context.Context, h *domaintypes.AttestationHandle) (domaintypes.SignedEnvelope, error)
	Deliver(
		ctx context.Context,
		signer domaintypes.Identity,
		dest domaintypes.ChainID,
		h *domaintypes.AttestationHandle,
		env domaintypes.SignedEnvelope,
	) error
}

// InboxWriter manages per-recipient inbox accounts.
type InboxWriter interface {
	DeriveAddress(owner domaintypes.Address, index uint32) (domaintypes.Address, uint8, error)
	Initialize(ctx context.Context, owner domaintypes.Identity, index uint32) (domaintypes.Address, error)
	Fetch(ctx context.Context, owner domaintypes.Address, index uint32) (domaintypes.InboxAccount, error)
	// Append adds record when the inbox holds exactly expectedCount
	// records, failing with apperr.ErrStaleState otherwise.
	Append(
		ctx context.Context,
		sender domaintypes.Identity,
		owner domaintypes.Address,
		index uint32,
		record domaintypes.FileTxRecord,
		expectedCount uint32,
	) error
}
