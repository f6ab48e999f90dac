package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zkl/internal/apperr"
	"zkl/internal/domain"
	"zkl/internal/ledger"
	"zkl/internal/registry"
)

// Writer is the client side of the inbox program.
type Writer struct {
	ledger   domain.Ledger
	program  domain.Address
	registry domain.Address
	log      *slog.Logger
}

// NewWriter returns a Writer for the inbox program at programID. Senders
// are authorized against registry records of registryProgram.
func NewWriter(l domain.Ledger, programID, registryProgram domain.Address, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{ledger: l, program: programID, registry: registryProgram, log: log}
}

func (w *Writer) DeriveAddress(owner domain.Address, index uint32) (domain.Address, uint8, error) {
	return DeriveAddress(w.program, owner, index)
}

// Initialize creates owner's inbox at index. Calling it again for the same
// owner and key is a no-op.
func (w *Writer) Initialize(ctx context.Context, owner domain.Identity, index uint32) (domain.Address, error) {
	addr, _, err := w.DeriveAddress(owner.Address(), index)
	if err != nil {
		return domain.Address{}, err
	}
	key := domain.EncodeX25519(owner.EncryptionPublic)

	existing, err := w.Fetch(ctx, owner.Address(), index)
	switch {
	case err == nil:
		return addr, sameOwner(existing, owner.Address(), key)
	case !errors.Is(err, apperr.ErrInboxNotFound):
		return domain.Address{}, err
	}

	ix := InitializeInstruction(w.program, addr, owner.Address(), InitializeArgs{RecipientKey: key, Index: index})
	tx, err := ledger.NewTransaction(owner.Address(), ix)
	if err != nil {
		return domain.Address{}, err
	}
	ledger.Sign(&tx, owner.LedgerPrivate)

	r, err := w.ledger.Submit(ctx, tx)
	if ledger.ProgramCode(err) == ledger.CodeAlreadyInitialized {
		// Lost a race with another initializer; accept it if it is ours.
		existing, ferr := w.Fetch(ctx, owner.Address(), index)
		if ferr != nil {
			return domain.Address{}, ferr
		}
		return addr, sameOwner(existing, owner.Address(), key)
	}
	if err != nil {
		return domain.Address{}, mapError(err)
	}
	w.log.Info("inbox initialized", "owner", owner.Address(), "inbox", addr, "index", index, "slot", r.Slot)
	return addr, nil
}

// Fetch returns the decoded inbox of owner at index.
func (w *Writer) Fetch(ctx context.Context, owner domain.Address, index uint32) (domain.InboxAccount, error) {
	addr, _, err := w.DeriveAddress(owner, index)
	if err != nil {
		return domain.InboxAccount{}, err
	}
	acc, err := w.ledger.GetAccount(ctx, addr)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.InboxAccount{}, apperr.With(apperr.ErrInboxNotFound, fmt.Errorf("no inbox at %s", addr))
	}
	if err != nil {
		return domain.InboxAccount{}, fmt.Errorf("inbox lookup %s: %w", addr, err)
	}
	if acc.Owner != w.program {
		return domain.InboxAccount{}, apperr.InvalidInput(fmt.Sprintf("account %s is not an inbox", addr))
	}
	return DecodeAccount(addr, acc.Data)
}

// Append submits record to owner's inbox at index, expecting the inbox to
// currently hold expectedCount records.
func (w *Writer) Append(
	ctx context.Context,
	sender domain.Identity,
	owner domain.Address,
	index uint32,
	record domain.FileTxRecord,
	expectedCount uint32,
) error {
	if err := record.Validate(); err != nil {
		return err
	}
	addr, _, err := w.DeriveAddress(owner, index)
	if err != nil {
		return err
	}
	senderRecord, _, err := registry.DeriveAddress(w.registry, sender.Address(), sender.RegistryIndex)
	if err != nil {
		return err
	}

	ix := AppendInstruction(w.program, addr, sender.Address(), senderRecord, AppendArgs{
		ExpectedCount: expectedCount,
		Record:        record,
	})
	tx, err := ledger.NewTransaction(sender.Address(), ix)
	if err != nil {
		return err
	}
	ledger.Sign(&tx, sender.LedgerPrivate)

	r, err := w.ledger.Submit(ctx, tx)
	if err != nil {
		return mapError(err)
	}
	w.log.Debug("inbox append", "inbox", addr, "position", expectedCount, "slot", r.Slot)
	return nil
}

func sameOwner(a domain.InboxAccount, owner domain.Address, key domain.EncodedKey) error {
	if a.Wallet != owner || a.RecipientKey != key {
		return apperr.New(apperr.CodeAlreadyExists, "inbox exists with a different owner or key")
	}
	return nil
}

func mapError(err error) error {
	switch ledger.ProgramCode(err) {
	case ledger.CodeInboxFull:
		return apperr.With(apperr.ErrInboxFull, err)
	case ledger.CodeStaleState:
		return apperr.With(apperr.ErrStaleState, err)
	case ledger.CodeUnauthorized, ledger.CodeMissingSignature:
		return apperr.With(apperr.ErrUnauthorized, err)
	case ledger.CodeAccountNotFound:
		return apperr.With(apperr.ErrInboxNotFound, err)
	case ledger.CodeInvalidArgument, ledger.CodeInvalidAccount:
		return apperr.With(apperr.ErrInvalidRecord, err)
	}
	return err
}

var _ domain.InboxWriter = (*Writer)(nil)
