package crypto_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
)

func TestPrivateKeySeal_RoundTrip(t *testing.T) {
	key, err := crypto.RandomSealingKey()
	require.NoError(t, err)

	sealed, err := crypto.EncryptPrivateKey([]byte("private key bytes"), key)
	require.NoError(t, err)

	nonceHex, ctHex, ok := strings.Cut(sealed, ":")
	require.True(t, ok)
	nonce, err := hex.DecodeString(nonceHex)
	require.NoError(t, err)
	require.Len(t, nonce, 12)
	_, err = hex.DecodeString(ctHex)
	require.NoError(t, err)

	got, err := crypto.DecryptPrivateKey(sealed, key)
	require.NoError(t, err)
	require.Equal(t, "private key bytes", string(got))
}

func TestPrivateKeySeal_WrongKey(t *testing.T) {
	key, err := crypto.RandomSealingKey()
	require.NoError(t, err)
	other, err := crypto.RandomSealingKey()
	require.NoError(t, err)
	sealed, err := crypto.EncryptPrivateKey([]byte("k"), key)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong value":  other,
		"wrong length": key[:30],
		"not hex":      strings.Repeat("zz", 32),
	}
	for name, k := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := crypto.DecryptPrivateKey(sealed, k)
			require.ErrorIs(t, err, apperr.ErrAuthenticationFailed)
		})
	}
}

func TestPrivateKeySeal_MalformedInput(t *testing.T) {
	key, err := crypto.RandomSealingKey()
	require.NoError(t, err)

	for _, s := range []string{"", "abc", "00:zz", "0011:2233"} {
		_, err := crypto.DecryptPrivateKey(s, key)
		require.ErrorIs(t, err, apperr.ErrAuthenticationFailed, s)
	}
}

func TestEncryptPrivateKey_RejectsShortKey(t *testing.T) {
	_, err := crypto.EncryptPrivateKey([]byte("k"), "00ff")
	require.ErrorIs(t, err, apperr.ErrInvalidKeyLength)
}

func TestDeriveSealingKey(t *testing.T) {
	salt, err := crypto.NewSalt()
	require.NoError(t, err)

	a, err := crypto.DeriveSealingKey("Correct-Horse-9!", salt, crypto.DefaultKDFParams)
	require.NoError(t, err)
	b, err := crypto.DeriveSealingKey("Correct-Horse-9!", salt, crypto.DefaultKDFParams)
	require.NoError(t, err)
	c, err := crypto.DeriveSealingKey("Correct-Horse-8!", salt, crypto.DefaultKDFParams)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 64)

	_, err = crypto.DeriveSealingKey("x", []byte("short"), crypto.DefaultKDFParams)
	require.Error(t, err)
}
