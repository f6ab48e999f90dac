package bridge_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zkl/internal/apperr"
	"zkl/internal/bridge"
	"zkl/internal/crypto"
	"zkl/internal/domain"
	"zkl/internal/ledger"
	"zkl/internal/programs"
)

var ids = programs.IDs{
	Registry: domain.MustParseAddress("Awboc8a1Z2GcdqUTwWT8ToWUJ1hD3PJALr4bqd3Mtdko"),
	Inbox:    domain.MustParseAddress("F2eqgbgg9pn9UQfrJ1dUdCPhYbkj4eyvfqk2PEGhD8tv"),
	Bridge:   domain.MustParseAddress("worm2ZoG2kUd4vFXhvjh93UUH596ayRfgQ2MgjNMTth"),
}

func guardianKey(t *testing.T) (domain.Ed25519Private, domain.Ed25519Public) {
	t.Helper()
	priv, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	return priv, pub
}

func TestVAA(t *testing.T) {
	g1, p1 := guardianKey(t)
	g2, p2 := guardianKey(t)
	e := domain.CrossChainEnvelope{
		Timestamp:   1700000000,
		Nonce:       5,
		SourceChain: domain.ChainSolana,
		Emitter:     domain.Address{7},
		Sequence:    3,
		Consistency: 1,
		Payload:     []byte("payload"),
	}

	raw := bridge.SignVAA(e, 0, []domain.Ed25519Private{g1, g2})
	v, err := bridge.ParseVAA(raw)
	require.NoError(t, err)
	require.Equal(t, e, v.Envelope)
	require.Len(t, v.Signatures, 2)
	require.NoError(t, v.Verify([]domain.Ed25519Public{p1, p2}))

	require.Error(t, v.Verify([]domain.Ed25519Public{p2, p1}), "signatures are bound to set positions")
	_, p3 := guardianKey(t)
	require.Error(t, v.Verify([]domain.Ed25519Public{p1, p2, p3}), "every guardian must sign")

	raw[len(raw)-1] ^= 1
	v, err = bridge.ParseVAA(raw)
	require.NoError(t, err)
	require.Error(t, v.Verify([]domain.Ed25519Public{p1, p2}))

	_, err = bridge.ParseVAA(raw[:20])
	require.ErrorIs(t, err, apperr.ErrRelayRejected)
}

type chain struct {
	ledger   *ledger.Memory
	guardian *bridge.DevGuardian
}

// newChain deploys the programs on a fresh ledger with its own guardian key.
// trusted holds the guardian sets of the other chains.
func newChain(t *testing.T, id domain.ChainID, trusted bridge.GuardianSets) chain {
	t.Helper()
	key, _ := guardianKey(t)
	l := ledger.NewMemory(id, nil)
	g := bridge.NewDevGuardian(l, ids.Bridge, key)
	sets := bridge.GuardianSets{id: {g.PublicKey()}}
	for c, set := range trusted {
		sets[c] = set
	}
	programs.DeployAll(l, ids, sets)
	return chain{ledger: l, guardian: g}
}

func signer(t *testing.T) domain.Identity {
	t.Helper()
	m, err := crypto.NewMnemonic()
	require.NoError(t, err)
	id, err := crypto.DeriveIdentity(m)
	require.NoError(t, err)
	return id
}

func client(src chain, dest chain) *bridge.Client {
	return bridge.New(
		bridge.Network{Ledger: src.ledger, Program: ids.Bridge},
		src.guardian,
		map[domain.ChainID]bridge.Network{dest.ledger.ChainID(): {Ledger: dest.ledger, Program: ids.Bridge}},
		bridge.Options{PollInitial: time.Millisecond, PollMax: 5 * time.Millisecond, AwaitTimeout: time.Second},
		nil,
	)
}

func TestAttestAndDeliver(t *testing.T) {
	ctx := context.Background()
	src := newChain(t, domain.ChainSolana, nil)
	dest := newChain(t, domain.ChainEthereum, bridge.GuardianSets{domain.ChainSolana: {src.guardian.PublicKey()}})
	require.NotEqual(t, src.guardian.PublicKey(), dest.guardian.PublicKey())
	c := client(src, dest)
	alice := signer(t)

	h1, err := c.Attest(ctx, alice, []byte("first"))
	require.NoError(t, err)
	h2, err := c.Attest(ctx, alice, []byte("second"))
	require.NoError(t, err)
	require.Equal(t, domain.ChainSolana, h1.Chain)
	require.Equal(t, alice.Address(), h1.Emitter)
	require.Equal(t, uint64(0), h1.Sequence)
	require.Equal(t, uint64(1), h2.Sequence)

	require.Equal(t, domain.RelayPending, h2.State)

	env, err := c.Await(ctx, &h2)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), env.Envelope.Payload)
	require.Equal(t, domain.RelayAttested, h2.State)

	ok, err := c.Delivered(ctx, domain.ChainEthereum, env)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Deliver(ctx, alice, domain.ChainEthereum, &h2, env))
	require.Equal(t, domain.RelayRelayed, h2.State)
	require.NoError(t, c.Deliver(ctx, alice, domain.ChainEthereum, &h2, env), "a second delivery is accepted")
	require.Equal(t, domain.RelayRelayed, h2.State)

	ok, err = c.Delivered(ctx, domain.ChainEthereum, env)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeliverRejectsUntrustedGuardian(t *testing.T) {
	ctx := context.Background()
	src := newChain(t, domain.ChainSolana, nil)
	_, stranger := guardianKey(t)
	alice := signer(t)

	h, err := client(src, newChain(t, domain.ChainEthereum, nil)).Attest(ctx, alice, []byte("hello"))
	require.NoError(t, err)

	for name, trusted := range map[string]bridge.GuardianSets{
		"no set for the source chain": nil,
		"another key for the source":  {domain.ChainSolana: {stranger}},
		"extra unsigned guardian":     {domain.ChainSolana: {src.guardian.PublicKey(), stranger}},
	} {
		t.Run(name, func(t *testing.T) {
			dest := newChain(t, domain.ChainEthereum, trusted)
			cl := client(src, dest)
			hh := h
			env, err := cl.Await(ctx, &hh)
			require.NoError(t, err)

			err = cl.Deliver(ctx, alice, domain.ChainEthereum, &hh, env)
			require.ErrorIs(t, err, apperr.ErrRelayRejected)
			require.Equal(t, domain.RelayFailed, hh.State)
			require.Equal(t, uint64(0), dest.ledger.Slot())
		})
	}

	cl := client(src, newChain(t, domain.ChainEthereum, nil))
	hh := h
	env, err := cl.Await(ctx, &hh)
	require.NoError(t, err)
	err = cl.Deliver(ctx, alice, domain.ChainID(9), &hh, env)
	require.ErrorIs(t, err, apperr.ErrRelayRejected)
}

func TestAttestValidatesPayload(t *testing.T) {
	src := newChain(t, domain.ChainSolana, nil)
	c := client(src, newChain(t, domain.ChainEthereum, nil))

	_, err := c.Attest(context.Background(), signer(t), nil)
	require.ErrorIs(t, err, apperr.ErrRelayRejected)
	_, err = c.Attest(context.Background(), signer(t), make([]byte, bridge.MaxPayload+1))
	require.ErrorIs(t, err, apperr.ErrRelayRejected)
}

func TestAwaitTimesOut(t *testing.T) {
	src := newChain(t, domain.ChainSolana, nil)
	c := bridge.New(
		bridge.Network{Ledger: src.ledger, Program: ids.Bridge},
		src.guardian,
		nil,
		bridge.Options{PollInitial: time.Millisecond, PollMax: 2 * time.Millisecond, AwaitTimeout: 30 * time.Millisecond},
		nil,
	)
	h := domain.AttestationHandle{Chain: domain.ChainSolana, Emitter: domain.Address{1}, Sequence: 4, State: domain.RelayPending}
	_, err := c.Await(context.Background(), &h)
	require.ErrorIs(t, err, apperr.ErrTimeout)
	require.Equal(t, domain.RelayPending, h.State, "a timeout leaves the message pending")
}

func TestSubmitAttestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	src := newChain(t, domain.ChainSolana, nil)
	c := client(src, newChain(t, domain.ChainEthereum, nil))
	alice := signer(t)

	tx, err := c.PrepareAttest(alice, []byte("once"))
	require.NoError(t, err)
	h1, err := c.SubmitAttest(ctx, tx)
	require.NoError(t, err)
	h2, err := c.SubmitAttest(ctx, tx)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Equal(t, uint64(1), src.ledger.Slot())

	next, _, err := bridge.MessageAddress(ids.Bridge, alice.Address(), 1)
	require.NoError(t, err)
	_, err = src.ledger.GetAccount(ctx, next)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
