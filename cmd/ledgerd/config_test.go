package main

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"zkl/internal/crypto"
	"zkl/internal/domain"
)

func TestParseGuardianSets(t *testing.T) {
	_, self, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	_, other, err := crypto.GenerateEd25519()
	require.NoError(t, err)

	sets, err := parseGuardianSets([]string{
		"1:self",
		"2:" + hex.EncodeToString(other[:]),
		"2:self",
	}, self)
	require.NoError(t, err)
	require.Equal(t, []domain.Ed25519Public{self}, sets[domain.ChainSolana])
	require.Equal(t, []domain.Ed25519Public{other, self}, sets[domain.ChainEthereum])

	for _, bad := range []string{"self", "0:self", "x:self", "2:abcd", "70000:self"} {
		_, err := parseGuardianSets([]string{bad}, self)
		require.Error(t, err, bad)
	}
}
