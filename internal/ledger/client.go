package ledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"zkl/internal/apperr"
	"zkl/internal/domain"
	"zkl/internal/rpc"
)

// RPC paths served by cmd/ledgerd.
const (
	PathAccounts     = "/v1/accounts/"
	PathTransactions = "/v1/transactions"
)

// HTTPClient is a domain.Ledger backed by the ledger RPC.
type HTTPClient struct {
	rpc    *rpc.Client
	chain  domain.ChainID
	submit time.Duration
	log    *slog.Logger
}

// NewHTTPClient returns a client for the chain served at rc.Base.
func NewHTTPClient(rc *rpc.Client, chain domain.ChainID, log *slog.Logger) *HTTPClient {
	if log == nil {
		log = slog.Default()
	}
	submit := rc.Timeout
	if submit <= 0 {
		submit = 30 * time.Second
	}
	return &HTTPClient{rpc: rc, chain: chain, submit: submit, log: log}
}

func (c *HTTPClient) ChainID() domain.ChainID { return c.chain }

func (c *HTTPClient) GetAccount(ctx context.Context, addr domain.Address) (domain.Account, error) {
	var acc domain.Account
	err := c.rpc.GetJSON(ctx, PathAccounts+addr.String(), &acc)
	if err != nil {
		return domain.Account{}, programError(err)
	}
	return acc, nil
}

// Submit sends tx and waits for it to be applied. The request is detached
// from ctx cancellation and bounded only by the client timeout so that a
// cancelled caller cannot abandon a write halfway.
func (c *HTTPClient) Submit(ctx context.Context, tx domain.Transaction) (domain.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.submit)
	defer cancel()

	var r domain.Receipt
	if err := c.rpc.PostJSON(ctx, PathTransactions, tx, &r); err != nil {
		err = programError(err)
		c.log.Debug("submit failed", "signature", Signature(tx), "err", err)
		return domain.Receipt{}, err
	}
	return r, nil
}

// programError turns a structured error response back into the
// *ProgramError the ledger raised.
func programError(err error) error {
	var se *rpc.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var pe ProgramError
	if se.Decode(&pe) != nil || pe.Code == "" {
		return err
	}
	if se.Status == http.StatusNotFound {
		return apperr.With(apperr.ErrNotFound, &pe)
	}
	return &pe
}

var _ domain.Ledger = (*HTTPClient)(nil)
