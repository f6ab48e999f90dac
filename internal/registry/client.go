package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
	"zkl/internal/ledger"
)

// Client reads and writes registry records on one ledger.
type Client struct {
	ledger  domain.Ledger
	program domain.Address
	log     *slog.Logger
}

// New returns a registry client for the program at programID.
func New(l domain.Ledger, programID domain.Address, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{ledger: l, program: programID, log: log}
}

func (c *Client) DeriveAddress(owner domain.Address, index uint32) (domain.Address, uint8, error) {
	return DeriveAddress(c.program, owner, index)
}

// Register publishes id's encryption key at index. Registering twice fails
// with apperr.ErrAlreadyRegistered and leaves the first record untouched.
func (c *Client) Register(ctx context.Context, id domain.Identity, index uint32) (domain.Address, error) {
	owner := id.Address()
	addr, _, err := c.DeriveAddress(owner, index)
	if err != nil {
		return domain.Address{}, err
	}

	_, err = c.ledger.GetAccount(ctx, addr)
	switch {
	case err == nil:
		return addr, apperr.ErrAlreadyRegistered
	case !errors.Is(err, apperr.ErrNotFound):
		return domain.Address{}, fmt.Errorf("registry lookup %s: %w", addr, err)
	}

	args := CreateArgs{Key: domain.EncodeX25519(id.EncryptionPublic), Index: index}
	copy(args.Signature[:], crypto.SignEd25519(id.LedgerPrivate, BindingMessage(addr)))

	tx, err := ledger.NewTransaction(owner, CreateInstruction(c.program, addr, owner, args))
	if err != nil {
		return domain.Address{}, err
	}
	ledger.Sign(&tx, id.LedgerPrivate)

	r, err := c.ledger.Submit(ctx, tx)
	if err != nil {
		return domain.Address{}, mapError(err)
	}
	c.log.Info("identity registered", "owner", owner, "record", addr, "index", index, "slot", r.Slot)
	return addr, nil
}

// Resolve returns the encryption key registered by owner at index.
func (c *Client) Resolve(ctx context.Context, owner domain.Address, index uint32) (domain.X25519Public, error) {
	acc, err := c.account(ctx, owner, index)
	if err != nil {
		return domain.X25519Public{}, err
	}
	return DecodeKey(acc.Data)
}

// Record returns owner's full registry record at index.
func (c *Client) Record(ctx context.Context, owner domain.Address, index uint32) (domain.RegistryRecord, error) {
	acc, err := c.account(ctx, owner, index)
	if err != nil {
		return domain.RegistryRecord{}, err
	}
	return DecodeRecord(acc.Address, acc.Data)
}

func (c *Client) account(ctx context.Context, owner domain.Address, index uint32) (domain.Account, error) {
	addr, _, err := c.DeriveAddress(owner, index)
	if err != nil {
		return domain.Account{}, err
	}
	acc, err := c.ledger.GetAccount(ctx, addr)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.Account{}, apperr.With(apperr.ErrRecipientNotRegistered, fmt.Errorf("no record at %s", addr))
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("registry lookup %s: %w", addr, err)
	}
	if acc.Owner != c.program {
		return domain.Account{}, apperr.InvalidInput(fmt.Sprintf("account %s is not a registry record", addr))
	}
	acc.Address = addr
	return acc, nil
}

func mapError(err error) error {
	switch ledger.ProgramCode(err) {
	case ledger.CodeAlreadyInitialized:
		return apperr.With(apperr.ErrAlreadyRegistered, err)
	case ledger.CodeUnauthorized, ledger.CodeMissingSignature:
		return apperr.With(apperr.ErrUnauthorized, err)
	case ledger.CodeInvalidArgument:
		return apperr.Wrap(apperr.CodeInvalidInput, "registry rejected record", err)
	}
	return err
}

var _ domain.RegistryClient = (*Client)(nil)
