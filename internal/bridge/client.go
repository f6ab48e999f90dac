package bridge

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"zkl/internal/apperr"
	"zkl/internal/domain"
	"zkl/internal/ledger"
)

// Network is a ledger together with its bridge program.
type Network struct {
	Ledger  domain.Ledger
	Program domain.Address
}

// Options bound attestation polling.
type Options struct {
	PollInitial  time.Duration
	PollMax      time.Duration
	AwaitTimeout time.Duration
	Consistency  uint8
}

func (o Options) withDefaults() Options {
	if o.PollInitial <= 0 {
		o.PollInitial = 250 * time.Millisecond
	}
	if o.PollMax <= 0 {
		o.PollMax = 5 * time.Second
	}
	if o.AwaitTimeout <= 0 {
		o.AwaitTimeout = 2 * time.Minute
	}
	return o
}

// Client attests on the source network and delivers to destinations.
type Client struct {
	source   Network
	guardian Guardian
	dests    map[domain.ChainID]Network
	opts     Options
	log      *slog.Logger
}

// New returns a bridge client.
func New(source Network, guardian Guardian, dests map[domain.ChainID]Network, opts Options, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{source: source, guardian: guardian, dests: dests, opts: opts.withDefaults(), log: log}
}

// Attest posts payload from signer and returns its handle once the source
// transaction is confirmed.
func (c *Client) Attest(ctx context.Context, signer domain.Identity, payload []byte) (domain.AttestationHandle, error) {
	tx, err := c.PrepareAttest(signer, payload)
	if err != nil {
		return domain.AttestationHandle{}, err
	}
	return c.SubmitAttest(ctx, tx)
}

// PrepareAttest builds and signs the source transaction that posts payload.
// Submitting the same transaction again returns the first receipt, so a
// caller that keeps it can retry without posting a second message.
func (c *Client) PrepareAttest(signer domain.Identity, payload []byte) (domain.Transaction, error) {
	if len(payload) == 0 || len(payload) > MaxPayload {
		return domain.Transaction{}, apperr.With(apperr.ErrRelayRejected, fmt.Errorf("payload is %d bytes, want 1..%d", len(payload), MaxPayload))
	}
	emitter := signer.Address()
	seqAddr, _, err := SequenceAddress(c.source.Program, emitter)
	if err != nil {
		return domain.Transaction{}, err
	}
	var nonce [4]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return domain.Transaction{}, err
	}

	ix := PostMessageInstruction(c.source.Program, emitter, seqAddr, PostArgs{
		Nonce:       binary.LittleEndian.Uint32(nonce[:]),
		Consistency: c.opts.Consistency,
		Payload:     payload,
	})
	tx, err := ledger.NewTransaction(emitter, ix)
	if err != nil {
		return domain.Transaction{}, err
	}
	ledger.Sign(&tx, signer.LedgerPrivate)
	return tx, nil
}

// SubmitAttest submits a transaction from PrepareAttest and returns the
// handle of the posted message in the pending state.
func (c *Client) SubmitAttest(ctx context.Context, tx domain.Transaction) (domain.AttestationHandle, error) {
	r, err := c.source.Ledger.Submit(ctx, tx)
	if err != nil {
		return domain.AttestationHandle{}, mapError(err)
	}
	if len(r.ReturnData) != 8 {
		return domain.AttestationHandle{}, apperr.Internal("bridge post returned no sequence", nil)
	}
	h := domain.AttestationHandle{
		Chain:       c.source.Ledger.ChainID(),
		Emitter:     tx.FeePayer,
		Sequence:    binary.LittleEndian.Uint64(r.ReturnData),
		TxSignature: r.Signature,
		State:       domain.RelayPending,
	}
	c.log.Info("bridge message posted", "handle", h.String(), "state", h.State)
	return h, nil
}

// Await polls the guardian until the message behind h is signed and moves
// h to attested. A guardian answer that can never succeed marks h failed;
// a timeout leaves it pending.
func (c *Client) Await(ctx context.Context, h *domain.AttestationHandle) (domain.SignedEnvelope, error) {
	env, err := c.await(ctx, *h)
	switch {
	case err == nil:
		h.State = domain.RelayAttested
		c.log.Info("bridge message attested", "handle", h.String(), "state", h.State)
	case fatal(err):
		h.State = domain.RelayFailed
		c.log.Warn("bridge attestation failed", "handle", h.String(), "state", h.State, "err", err)
	}
	return env, err
}

func (c *Client) await(ctx context.Context, h domain.AttestationHandle) (domain.SignedEnvelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.AwaitTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.PollInitial
	b.MaxInterval = c.opts.PollMax
	b.MaxElapsedTime = 0

	var raw []byte
	op := func() error {
		var err error
		raw, err = c.guardian.SignedVAA(ctx, h.Chain, h.Emitter, h.Sequence)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperr.ErrNotFound) || apperr.Retryable(err) {
			c.log.Debug("attestation pending", "handle", h.String(), "err", err)
			return err
		}
		return backoff.Permanent(err)
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if ctx.Err() != nil && !errors.Is(err, context.Canceled) {
			return domain.SignedEnvelope{}, apperr.With(apperr.ErrTimeout, fmt.Errorf("attestation %s: %w", h, err))
		}
		return domain.SignedEnvelope{}, err
	}

	v, err := ParseVAA(raw)
	if err != nil {
		return domain.SignedEnvelope{}, err
	}
	e := v.Envelope
	if e.SourceChain != h.Chain || e.Emitter != h.Emitter || e.Sequence != h.Sequence {
		return domain.SignedEnvelope{}, apperr.With(apperr.ErrRelayRejected, fmt.Errorf("guardian returned %d/%s/%d for %s", e.SourceChain, e.Emitter, e.Sequence, h))
	}
	return domain.SignedEnvelope{Envelope: e, Raw: raw}, nil
}

// Deliver submits env to the bridge on dest and moves h to relayed. A VAA
// that was already claimed counts as delivered. A destination that refuses
// the VAA marks h failed.
func (c *Client) Deliver(ctx context.Context, signer domain.Identity, dest domain.ChainID, h *domain.AttestationHandle, env domain.SignedEnvelope) error {
	err := c.deliver(ctx, signer, dest, env)
	switch {
	case err == nil:
		h.State = domain.RelayRelayed
		c.log.Info("bridge message delivered", "handle", h.String(), "chain", dest, "state", h.State)
	case fatal(err):
		h.State = domain.RelayFailed
		c.log.Warn("bridge delivery failed", "handle", h.String(), "chain", dest, "state", h.State, "err", err)
	}
	return err
}

func (c *Client) deliver(ctx context.Context, signer domain.Identity, dest domain.ChainID, env domain.SignedEnvelope) error {
	n, ok := c.dests[dest]
	if !ok {
		return apperr.With(apperr.ErrRelayRejected, fmt.Errorf("no route to chain %d", dest))
	}
	e := env.Envelope
	claim, _, err := ClaimAddress(n.Program, e.SourceChain, e.Emitter, e.Sequence)
	if err != nil {
		return err
	}
	tx, err := ledger.NewTransaction(signer.Address(), ReceiveMessageInstruction(n.Program, signer.Address(), claim, env.Raw))
	if err != nil {
		return err
	}
	ledger.Sign(&tx, signer.LedgerPrivate)

	_, err = n.Ledger.Submit(ctx, tx)
	if ledger.ProgramCode(err) == ledger.CodeAlreadyProcessed {
		c.log.Info("bridge message already delivered", "chain", dest, "sequence", e.Sequence)
		return nil
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Delivered reports whether env has been claimed on dest.
func (c *Client) Delivered(ctx context.Context, dest domain.ChainID, env domain.SignedEnvelope) (bool, error) {
	n, ok := c.dests[dest]
	if !ok {
		return false, apperr.With(apperr.ErrRelayRejected, fmt.Errorf("no route to chain %d", dest))
	}
	e := env.Envelope
	claim, _, err := ClaimAddress(n.Program, e.SourceChain, e.Emitter, e.Sequence)
	if err != nil {
		return false, err
	}
	acc, err := n.Ledger.GetAccount(ctx, claim)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(acc.Data, EncodeBody(e)), nil
}

func mapError(err error) error {
	switch ledger.ProgramCode(err) {
	case ledger.CodeInvalidArgument, ledger.CodeInvalidVAA, ledger.CodeInvalidAccount:
		return apperr.With(apperr.ErrRelayRejected, err)
	case ledger.CodeUnauthorized, ledger.CodeMissingSignature:
		return apperr.With(apperr.ErrUnauthorized, err)
	}
	return err
}

func fatal(err error) bool {
	return errors.Is(err, apperr.ErrRelayRejected) || errors.Is(err, apperr.ErrUnauthorized)
}

var _ domain.RelayClient = (*Client)(nil)
