package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
	"zkl/internal/inbox"
	"zkl/internal/ledger"
	"zkl/internal/programs"
	"zkl/internal/registry"
	"zkl/internal/services/identity"
	"zkl/internal/store"
)

const strongPassphrase = "Str0ng!Passphrase"

var ids = programs.IDs{
	Registry: domain.MustParseAddress("Awboc8a1Z2GcdqUTwWT8ToWUJ1hD3PJALr4bqd3Mtdko"),
	Inbox:    domain.MustParseAddress("F2eqgbgg9pn9UQfrJ1dUdCPhYbkj4eyvfqk2PEGhD8tv"),
	Bridge:   domain.MustParseAddress("worm2ZoG2kUd4vFXhvjh93UUH596ayRfgQ2MgjNMTth"),
}

func fileStore(t *testing.T) *store.IdentityFileStore {
	t.Helper()
	return store.NewIdentityFileStore(t.TempDir(), nil).WithKDF(crypto.KDFParams{Time: 1, Memory: 64, Threads: 1})
}

func TestCreateUnlock(t *testing.T) {
	svc := identity.New(fileStore(t), nil, nil, nil)

	id, mnemonic, err := svc.Create(strongPassphrase, 2)
	require.NoError(t, err)
	require.NotEmpty(t, mnemonic)
	require.Equal(t, uint32(2), id.RegistryIndex)

	got, err := svc.Unlock(strongPassphrase)
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = svc.Unlock("Wr0ng!Passphrase")
	require.ErrorIs(t, err, apperr.ErrAuthenticationFailed)

	fp, err := svc.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, crypto.Fingerprint(id.EncryptionPublic.Slice()), fp)
}

func TestCreate_RejectsWeakPassphrase(t *testing.T) {
	svc := identity.New(fileStore(t), nil, nil, nil)
	for _, p := range []string{"short", "alllowercase1!", "NoDigitsHere!!", "NoSymbols12345"} {
		_, _, err := svc.Create(p, 0)
		require.ErrorIs(t, err, identity.ErrWeakPassphrase, p)
	}
}

func TestImport_RecoversSameKeys(t *testing.T) {
	first := identity.New(fileStore(t), nil, nil, nil)
	id, mnemonic, err := first.Create(strongPassphrase, 0)
	require.NoError(t, err)

	second := identity.New(fileStore(t), nil, nil, nil)
	restored, err := second.Import(strongPassphrase, "  "+mnemonic+"\n", 0)
	require.NoError(t, err)
	require.Equal(t, id, restored)

	_, err = second.Import(strongPassphrase, "not a mnemonic", 0)
	require.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestCreate_PlatformKeyring(t *testing.T) {
	keyring.MockInit()
	s := store.NewIdentityFileStore(t.TempDir(), store.NewPlatformKeyStore())
	svc := identity.New(s, nil, nil, nil)

	id, _, err := svc.Create("", 0)
	require.NoError(t, err)
	got, err := svc.Unlock("")
	require.NoError(t, err)
	require.Equal(t, id.Address(), got.Address())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(domain.ChainSolana, nil)
	programs.DeployAll(l, ids, nil)
	reg := registry.New(l, ids.Registry, nil)
	w := inbox.NewWriter(l, ids.Inbox, ids.Registry, nil)

	svc := identity.New(fileStore(t), reg, w, nil)
	id, _, err := svc.Create(strongPassphrase, 0)
	require.NoError(t, err)

	addr, err := svc.Register(ctx, id)
	require.NoError(t, err)
	again, err := svc.Register(ctx, id)
	require.NoError(t, err, "re-registering the same key is accepted")
	require.Equal(t, addr, again)

	key, err := reg.Resolve(ctx, id.Address(), 0)
	require.NoError(t, err)
	require.Equal(t, id.EncryptionPublic, key)

	acc, err := w.Fetch(ctx, id.Address(), 0)
	require.NoError(t, err)
	require.Equal(t, id.Address(), acc.Wallet)
}

func TestRegister_Offline(t *testing.T) {
	svc := identity.New(fileStore(t), nil, nil, nil)
	id, _, err := svc.Create(strongPassphrase, 0)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), id)
	require.Equal(t, apperr.CodeUnavailable, apperr.CodeOf(err))
}
