package types_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"zkl/internal/apperr"
	"zkl/internal/domain/types"
)

func TestParseAddress(t *testing.T) {
	a := types.MustParseAddress("F2eqgbgg9pn9UQfrJ1dUdCPhYbkj4eyvfqk2PEGhD8tv")
	require.False(t, a.IsZero())
	require.Equal(t, "F2eqgbgg9pn9UQfrJ1dUdCPhYbkj4eyvfqk2PEGhD8tv", a.String())

	_, err := types.ParseAddress("0OIl")
	require.ErrorIs(t, err, apperr.ErrInvalidAddress)

	_, err = types.ParseAddress("3yZe7d")
	require.ErrorIs(t, err, apperr.ErrInvalidAddress)
}

func TestAddressJSON(t *testing.T) {
	a := types.MustParseAddress("Awboc8a1Z2GcdqUTwWT8ToWUJ1hD3PJALr4bqd3Mtdko")
	b, err := json.Marshal(struct{ A types.Address }{a})
	require.NoError(t, err)
	require.JSONEq(t, `{"A":"Awboc8a1Z2GcdqUTwWT8ToWUJ1hD3PJALr4bqd3Mtdko"}`, string(b))

	var out struct{ A types.Address }
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, a, out.A)
}

func TestEncodedKey(t *testing.T) {
	var pub types.X25519Public
	pub[0], pub[31] = 7, 9
	k := types.EncodeX25519(pub)
	require.Equal(t, types.KeyTypeX25519, k[0])

	got, err := k.X25519()
	require.NoError(t, err)
	require.Equal(t, pub, got)

	k[0] = 0x02
	_, err = k.X25519()
	require.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))

	_, err = types.EncodedKeyFromBytes(make([]byte, 32))
	require.ErrorIs(t, err, apperr.ErrInvalidKeyLength)
}

func TestNewFileTxRecord(t *testing.T) {
	sender := types.EncodeX25519(types.X25519Public{1})
	eph := make([]byte, 32)

	r, err := types.NewFileTxRecord(sender[:], "aa:bb", eph, 42)
	require.NoError(t, err)
	require.Equal(t, "aa:bb", r.EncryptedLink)
	require.Equal(t, uint64(42), r.Timestamp)

	tests := []struct {
		name      string
		sender    []byte
		link      string
		ephemeral []byte
		want      error
	}{
		{"short sender", sender[:32], "x", eph, apperr.ErrInvalidKeyLength},
		{"short ephemeral", sender[:], "x", eph[:31], apperr.ErrInvalidKeyLength},
		{"empty link", sender[:], "", eph, apperr.ErrInvalidRecord},
		{"long link", sender[:], strings.Repeat("a", types.MaxLinkLength+1), eph, apperr.ErrInvalidRecord},
		{"bad utf8", sender[:], "\xff\xfe", eph, apperr.ErrInvalidRecord},
		{"bad key type", append([]byte{9}, sender[1:]...), "x", eph, apperr.ErrInvalidRecord},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := types.NewFileTxRecord(tc.sender, tc.link, tc.ephemeral, 1)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInboxAccount(t *testing.T) {
	var a types.InboxAccount
	require.False(t, a.Full())
	require.False(t, a.Contains("x"))

	for i := 0; i < types.MaxInboxMessages; i++ {
		a.Messages = append(a.Messages, types.FileTxRecord{EncryptedLink: strings.Repeat("l", i+1)})
	}
	require.True(t, a.Full())
	require.True(t, a.Contains("lll"))
}
