package interfaces

import (
	"context"

	domaintypes "zkl/internal/domain/types"
)

// Ledger reads accounts and submits transactions on one chain.
type Ledger interface {
	ChainID() domaintypes.ChainID
	// GetAccount fails with apperr.ErrNotFound for an absent account.
	GetAccount(ctx context.Context, addr domaintypes.Address) (domaintypes.Account, error)
	// Submit returns once the transaction is applied.
	Submit(ctx context.Context, tx domaintypes.Transaction) (domaintypes.Receipt, error)
}
