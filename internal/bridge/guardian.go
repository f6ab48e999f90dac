package bridge

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"zkl/internal/apperr"
	"zkl/internal/domain"
	"zkl/internal/rpc"
)

// Guardian serves signed VAAs for posted messages. It fails with
// apperr.ErrNotFound until the message has been observed.
type Guardian interface {
	SignedVAA(ctx context.Context, chain domain.ChainID, emitter domain.Address, seq uint64) ([]byte, error)
}

// VAAPath returns the guardian REST path of a message.
func VAAPath(chain domain.ChainID, emitter domain.Address, seq uint64) string {
	return fmt.Sprintf("/v1/signed_vaa/%d/%s/%d", chain, hex.EncodeToString(emitter[:]), seq)
}

// SignedVAAResponse is the guardian REST response body.
type SignedVAAResponse struct {
	VAABytes []byte `json:"vaaBytes"`
}

// HTTPGuardian queries a guardian REST endpoint.
type HTTPGuardian struct {
	rpc *rpc.Client
}

func NewHTTPGuardian(rc *rpc.Client) *HTTPGuardian { return &HTTPGuardian{rpc: rc} }

func (g *HTTPGuardian) SignedVAA(ctx context.Context, chain domain.ChainID, emitter domain.Address, seq uint64) ([]byte, error) {
	var out SignedVAAResponse
	err := g.rpc.GetJSON(ctx, VAAPath(chain, emitter, seq), &out)
	var se *rpc.StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return nil, apperr.With(apperr.ErrNotFound, se)
	}
	if err != nil {
		return nil, err
	}
	return out.VAABytes, nil
}

// DevGuardian observes one ledger directly and signs with a single key. It
// stands in for a guardian network in development and tests.
type DevGuardian struct {
	ledger   domain.Ledger
	program  domain.Address
	setIndex uint32
	key      domain.Ed25519Private
}

// NewDevGuardian returns a guardian for messages posted to programID on l.
func NewDevGuardian(l domain.Ledger, programID domain.Address, key domain.Ed25519Private) *DevGuardian {
	return &DevGuardian{ledger: l, program: programID, key: key}
}

// PublicKey is the guardian set a destination bridge must trust.
func (g *DevGuardian) PublicKey() domain.Ed25519Public {
	var pub domain.Ed25519Public
	copy(pub[:], g.key[32:])
	return pub
}

func (g *DevGuardian) SignedVAA(ctx context.Context, chain domain.ChainID, emitter domain.Address, seq uint64) ([]byte, error) {
	if chain != g.ledger.ChainID() {
		return nil, apperr.With(apperr.ErrNotFound, fmt.Errorf("guardian does not observe chain %d", chain))
	}
	addr, _, err := MessageAddress(g.program, emitter, seq)
	if err != nil {
		return nil, err
	}
	acc, err := g.ledger.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acc.Owner != g.program {
		return nil, apperr.With(apperr.ErrNotFound, fmt.Errorf("account %s is not a posted message", addr))
	}
	env, err := DecodeBody(acc.Data)
	if err != nil {
		return nil, err
	}
	return SignVAA(env, g.setIndex, []domain.Ed25519Private{g.key}), nil
}

var (
	_ Guardian = (*HTTPGuardian)(nil)
	_ Guardian = (*DevGuardian)(nil)
)
