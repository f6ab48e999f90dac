package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
	"zkl/internal/store"
)

// cheap parameters keep the tests fast
var testKDF = crypto.KDFParams{Time: 1, Memory: 64, Threads: 1}

func testMeta() domain.IdentityMeta {
	return domain.IdentityMeta{
		EncryptionPublicKey: domain.X25519Public{1},
		LedgerAddress:       domain.Address{2},
		RegistryIndex:       3,
	}
}

func TestIdentity_SaveLoad_OK(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir(), nil).WithKDF(testKDF)
	seed := []byte("abandon abandon art")

	if err := ids.SaveSeed("correct horse", seed, testMeta()); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	got, meta, err := ids.LoadSeed("correct horse")
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	require.Equal(t, seed, got)
	require.Equal(t, testMeta().LedgerAddress, meta.LedgerAddress)

	meta, err = ids.Meta()
	require.NoError(t, err)
	require.Equal(t, uint32(3), meta.RegistryIndex)
}

func TestIdentity_WrongPassphrase_Fails(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir(), nil).WithKDF(testKDF)
	if err := ids.SaveSeed("correct", []byte("seed"), testMeta()); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	_, _, err := ids.LoadSeed("wrong")
	if !errors.Is(err, apperr.ErrAuthenticationFailed) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
}

func TestIdentity_Missing(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir(), nil)
	_, err := ids.Meta()
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestIdentity_PlatformKeyring(t *testing.T) {
	keyring.MockInit()
	keys := store.NewPlatformKeyStore()
	ids := store.NewIdentityFileStore(t.TempDir(), keys)

	require.NoError(t, ids.SaveSeed("", []byte("seed words"), testMeta()))
	got, _, err := ids.LoadSeed("")
	require.NoError(t, err)
	require.Equal(t, []byte("seed words"), got)

	require.NoError(t, keys.Delete(domain.Address{2}.String()+"/3"))
	_, _, err = ids.LoadSeed("")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestIdentity_EmptyPassphraseWithoutKeyring(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir(), nil)
	err := ids.SaveSeed("", []byte("seed"), testMeta())
	require.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestJournal_PutGetDelete(t *testing.T) {
	j := store.NewJournalFileStore(t.TempDir())

	_, ok, err := j.Get("k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, j.Put(domain.SendJournalEntry{ID: "id-1", Key: "k", Stage: domain.SendStage("Publish"), ContentID: "bafy"}))
	got, ok, err := j.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bafy", got.ContentID)
	require.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, j.Delete("k"))
	require.NoError(t, j.Delete("k"))
	_, ok, err = j.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}
