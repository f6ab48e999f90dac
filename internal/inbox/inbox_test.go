package inbox_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
	"zkl/internal/inbox"
	"zkl/internal/ledger"
	"zkl/internal/programs"
	"zkl/internal/registry"
)

var ids = programs.IDs{
	Registry: domain.MustParseAddress("Awboc8a1Z2GcdqUTwWT8ToWUJ1hD3PJALr4bqd3Mtdko"),
	Inbox:    domain.MustParseAddress("F2eqgbgg9pn9UQfrJ1dUdCPhYbkj4eyvfqk2PEGhD8tv"),
	Bridge:   domain.MustParseAddress("worm2ZoG2kUd4vFXhvjh93UUH596ayRfgQ2MgjNMTth"),
}

type fixture struct {
	ledger *ledger.Memory
	writer *inbox.Writer
}

func newFixture() *fixture {
	m := ledger.NewMemory(domain.ChainSolana, nil)
	programs.DeployAll(m, ids, nil)
	return &fixture{ledger: m, writer: inbox.NewWriter(m, ids.Inbox, ids.Registry, nil)}
}

func (f *fixture) identity(t *testing.T, register bool) domain.Identity {
	t.Helper()
	m, err := crypto.NewMnemonic()
	require.NoError(t, err)
	id, err := crypto.DeriveIdentity(m)
	require.NoError(t, err)
	if register {
		_, err = registry.New(f.ledger, ids.Registry, nil).Register(context.Background(), id, 0)
		require.NoError(t, err)
	}
	return id
}

func record(t *testing.T, sender domain.Identity, link string) domain.FileTxRecord {
	t.Helper()
	k := domain.EncodeX25519(sender.EncryptionPublic)
	r, err := domain.NewFileTxRecord(k[:], link, make([]byte, 32), 1700000000)
	require.NoError(t, err)
	return r
}

func TestRecordCodec(t *testing.T) {
	r := domain.FileTxRecord{
		SenderEncryptionPubkey: domain.EncodeX25519(domain.X25519Public{4}),
		EncryptedLink:          "00ff:abcd",
		EphemeralPubkey:        domain.X25519Public{8},
		Timestamp:              99,
	}
	b := inbox.EncodeRecord(r)
	require.Len(t, b, domain.EncodedKeySize+4+len(r.EncryptedLink)+32+8)

	got, n, err := inbox.DecodeRecord(append(b, 0xee))
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, r, got)

	_, _, err = inbox.DecodeRecord(b[:len(b)-1])
	require.ErrorIs(t, err, apperr.ErrInvalidRecord)

	want := append([]byte{}, r.SenderEncryptionPubkey[:]...)
	want = append(want, 9, 0, 0, 0)
	want = append(want, "00ff:abcd"...)
	want = append(want, r.EphemeralPubkey[:]...)
	want = append(want, 99, 0, 0, 0, 0, 0, 0, 0)
	require.Equal(t, want, b, "borsh layout: key, u32 length, link, ephemeral key, u64 timestamp")

	huge := append([]byte{}, b...)
	huge[domain.EncodedKeySize+3] = 0xff
	_, _, err = inbox.DecodeRecord(huge)
	require.ErrorIs(t, err, apperr.ErrInvalidRecord)
}

func TestInstructionCodec(t *testing.T) {
	key := domain.EncodeX25519(domain.X25519Public{6})
	ix := inbox.InitializeInstruction(ids.Inbox, domain.Address{1}, domain.Address{2}, inbox.InitializeArgs{RecipientKey: key, Index: 3})
	require.Len(t, ix.Data, 1+domain.EncodedKeySize+4)
	got, err := inbox.DecodeInstruction(ix.Data)
	require.NoError(t, err)
	require.Equal(t, &inbox.InitializeArgs{RecipientKey: key, Index: 3}, got)

	_, err = inbox.DecodeInstruction(append(ix.Data, 0))
	require.Error(t, err)

	r := domain.FileTxRecord{SenderEncryptionPubkey: key, EncryptedLink: "bafk", Timestamp: 5}
	ix = inbox.AppendInstruction(ids.Inbox, domain.Address{1}, domain.Address{2}, domain.Address{3}, inbox.AppendArgs{ExpectedCount: 7, Record: r})
	require.Equal(t, []byte{1, 7, 0, 0, 0}, ix.Data[:5])
	got, err = inbox.DecodeInstruction(ix.Data)
	require.NoError(t, err)
	require.Equal(t, &inbox.AppendArgs{ExpectedCount: 7, Record: r}, got)

	_, err = inbox.DecodeInstruction(append(ix.Data, 0))
	require.Error(t, err)
	_, err = inbox.DecodeInstruction([]byte{9})
	require.Error(t, err)
}

func TestAccountCodec(t *testing.T) {
	a := domain.InboxAccount{
		Address:      domain.Address{1},
		RecipientKey: domain.EncodeX25519(domain.X25519Public{2}),
		Wallet:       domain.Address{3},
		Bump:         251,
	}
	for i := 0; i < 3; i++ {
		a.Messages = append(a.Messages, domain.FileTxRecord{
			SenderEncryptionPubkey: domain.EncodeX25519(domain.X25519Public{byte(i)}),
			EncryptedLink:          fmt.Sprintf("link-%d", i),
			Timestamp:              uint64(i),
		})
	}
	b, err := inbox.EncodeAccount(a)
	require.NoError(t, err)
	require.Len(t, b, inbox.AccountSize)

	got, err := inbox.DecodeAccount(a.Address, b)
	require.NoError(t, err)
	require.Equal(t, a, got)

	_, err = inbox.DecodeAccount(a.Address, make([]byte, inbox.AccountSize))
	require.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestAccountFitsFullInbox(t *testing.T) {
	a := domain.InboxAccount{RecipientKey: domain.EncodeX25519(domain.X25519Public{2})}
	for i := 0; i < domain.MaxInboxMessages; i++ {
		a.Messages = append(a.Messages, domain.FileTxRecord{
			SenderEncryptionPubkey: domain.EncodeX25519(domain.X25519Public{1}),
			EncryptedLink:          strings.Repeat("x", domain.MaxLinkLength),
		})
	}
	_, err := inbox.EncodeAccount(a)
	require.NoError(t, err)

	a.Messages = append(a.Messages, a.Messages[0])
	_, err = inbox.EncodeAccount(a)
	require.ErrorIs(t, err, apperr.ErrInboxFull)
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	bob := f.identity(t, true)

	addr, err := f.writer.Initialize(ctx, bob, 0)
	require.NoError(t, err)
	again, err := f.writer.Initialize(ctx, bob, 0)
	require.NoError(t, err)
	require.Equal(t, addr, again)

	acc, err := f.writer.Fetch(ctx, bob.Address(), 0)
	require.NoError(t, err)
	require.Equal(t, bob.Address(), acc.Wallet)
	require.Equal(t, domain.EncodeX25519(bob.EncryptionPublic), acc.RecipientKey)
	require.Empty(t, acc.Messages)

	_, err = f.writer.Fetch(ctx, bob.Address(), inbox.NextShard(0))
	require.ErrorIs(t, err, apperr.ErrInboxNotFound)
}

func TestAppend(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.identity(t, true)
	bob := f.identity(t, true)
	_, err := f.writer.Initialize(ctx, alice, 0)
	require.NoError(t, err)

	require.NoError(t, f.writer.Append(ctx, bob, alice.Address(), 0, record(t, bob, "a:1"), 0))
	require.NoError(t, f.writer.Append(ctx, bob, alice.Address(), 0, record(t, bob, "a:2"), 1))

	err = f.writer.Append(ctx, bob, alice.Address(), 0, record(t, bob, "a:3"), 1)
	require.ErrorIs(t, err, apperr.ErrStaleState)
	require.True(t, apperr.Retryable(err))

	acc, err := f.writer.Fetch(ctx, alice.Address(), 0)
	require.NoError(t, err)
	require.Len(t, acc.Messages, 2)
	require.True(t, acc.Contains("a:2"))
	require.False(t, acc.Contains("a:3"))
}

func TestAppendRequiresRegisteredSender(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.identity(t, true)
	mallory := f.identity(t, false)
	bob := f.identity(t, true)
	_, err := f.writer.Initialize(ctx, alice, 0)
	require.NoError(t, err)

	err = f.writer.Append(ctx, mallory, alice.Address(), 0, record(t, mallory, "m:1"), 0)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	err = f.writer.Append(ctx, bob, alice.Address(), 0, record(t, mallory, "m:2"), 0)
	require.ErrorIs(t, err, apperr.ErrUnauthorized, "sender key must match the registered key")

	err = f.writer.Append(ctx, bob, bob.Address(), 0, record(t, bob, "b:1"), 0)
	require.ErrorIs(t, err, apperr.ErrInboxNotFound)
}

func TestAppendInboxFull(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.identity(t, true)
	bob := f.identity(t, true)
	_, err := f.writer.Initialize(ctx, alice, 0)
	require.NoError(t, err)

	for i := 0; i < domain.MaxInboxMessages; i++ {
		require.NoError(t, f.writer.Append(ctx, bob, alice.Address(), 0, record(t, bob, fmt.Sprintf("l:%d", i)), uint32(i)))
	}
	err = f.writer.Append(ctx, bob, alice.Address(), 0, record(t, bob, "overflow"), domain.MaxInboxMessages)
	require.ErrorIs(t, err, apperr.ErrInboxFull)

	acc, err := f.writer.Fetch(ctx, alice.Address(), 0)
	require.NoError(t, err)
	require.True(t, acc.Full())
}
