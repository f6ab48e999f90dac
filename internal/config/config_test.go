package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zkl/internal/config"
	"zkl/internal/domain"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := config.Load("", t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "solana", c.HomeChain)
	require.Equal(t, domain.ChainSolana, c.Home().ChainID)
	require.Equal(t, "http://127.0.0.1:5001", c.ContentAPI)
	require.True(t, c.Pin)
	require.Equal(t, "Awboc8a1Z2GcdqUTwWT8ToWUJ1hD3PJALr4bqd3Mtdko", c.Home().Programs.Registry.String())

	eth, err := c.Lookup("2")
	require.NoError(t, err)
	require.Equal(t, "ethereum", eth.Name)
	_, err = c.Lookup("cosmos")
	require.Error(t, err)
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := t.TempDir()
	yml := `
homeChain: ethereum
networks:
  ethereum:
    rpc: http://ledger.example:9000
content:
  api: /dns4/ipfs.example/tcp/5001
  pin: false
retry:
  maxAttempts: 9
`
	require.NoError(t, os.WriteFile(filepath.Join(home, config.FileName), []byte(yml), 0o600))
	t.Setenv("ZKL_TIMEOUT", "3s")
	t.Setenv("ZKL_LOG_LEVEL", "debug")

	c, err := config.Load("", home)
	require.NoError(t, err)

	require.Equal(t, "ethereum", c.HomeChain)
	require.Equal(t, "http://ledger.example:9000", c.Home().RPC)
	require.Equal(t, domain.ChainEthereum, c.Home().ChainID)
	require.Equal(t, "http://ipfs.example:5001", c.ContentAPI)
	require.False(t, c.Pin)
	require.Equal(t, 9, c.Retry.MaxAttempts)
	require.Equal(t, 200*time.Millisecond, c.Retry.InitialInterval)
	require.Equal(t, 3*time.Second, c.Timeout)
	require.Equal(t, "debug", c.LogLevel)
}

func TestLoad_RejectsBadProgramID(t *testing.T) {
	home := t.TempDir()
	yml := "networks:\n  solana:\n    programs:\n      inbox: not-base58-0OIl\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, config.FileName), []byte(yml), 0o600))

	_, err := config.Load("", home)
	require.ErrorContains(t, err, "inbox program")
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)
}
