package crypto_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	priv, pub, err := crypto.GenerateX25519()
	require.NoError(t, err)

	for _, pt := range [][]byte{{}, []byte("hello"), bytes.Repeat([]byte{0xAB}, 1<<16)} {
		ct, eph, err := crypto.Encrypt(pub, pt)
		require.NoError(t, err)
		require.NotEqual(t, domain.X25519Public{}, eph)

		got, err := crypto.Decrypt(ct, eph, priv)
		require.NoError(t, err)
		require.True(t, bytes.Equal(pt, got))
	}
}

func TestEncrypt_FreshEphemeralPerCall(t *testing.T) {
	_, pub, err := crypto.GenerateX25519()
	require.NoError(t, err)

	ct1, eph1, err := crypto.Encrypt(pub, []byte("same"))
	require.NoError(t, err)
	ct2, eph2, err := crypto.Encrypt(pub, []byte("same"))
	require.NoError(t, err)

	require.NotEqual(t, eph1, eph2)
	require.NotEqual(t, ct1, ct2)
}

func TestDecrypt_WrongKeyFailsAuthentication(t *testing.T) {
	_, pub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	otherPriv, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	ct, eph, err := crypto.Encrypt(pub, []byte("secret file"))
	require.NoError(t, err)

	_, err = crypto.Decrypt(ct, eph, otherPriv)
	require.ErrorIs(t, err, apperr.ErrAuthenticationFailed)
}

func TestDecrypt_TamperingFailsAuthentication(t *testing.T) {
	priv, pub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	ct, eph, err := crypto.Encrypt(pub, []byte("secret file"))
	require.NoError(t, err)

	t.Run("ciphertext byte", func(t *testing.T) {
		bad := append([]byte(nil), ct...)
		bad[len(bad)/2] ^= 0x01
		_, err := crypto.Decrypt(bad, eph, priv)
		require.ErrorIs(t, err, apperr.ErrAuthenticationFailed)
	})
	t.Run("ephemeral key", func(t *testing.T) {
		_, otherEph, err := crypto.GenerateX25519()
		require.NoError(t, err)
		_, err = crypto.Decrypt(ct, otherEph, priv)
		require.ErrorIs(t, err, apperr.ErrAuthenticationFailed)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := crypto.Decrypt(ct[:4], eph, priv)
		require.ErrorIs(t, err, apperr.ErrAuthenticationFailed)
	})
}

func TestDH_RejectsLowOrderPoint(t *testing.T) {
	priv, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	_, err = crypto.DH(priv, domain.X25519Public{})
	require.Error(t, err)
	require.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}
