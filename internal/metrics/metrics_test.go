package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"zkl/internal/metrics"
)

func TestMetrics_CountsAndTextfile(t *testing.T) {
	m := metrics.New()
	m.Stage("Publish", "ok")
	m.Stage("Publish", "ok")
	m.Retry("InboxAppend")
	m.Send("ok", 120*time.Millisecond)
	m.Request("/v1/transactions", 409)

	n, err := testutil.GatherAndCount(m.Registry, "zkl_send_stage_total", "zkl_send_retries_total", "zkl_ledgerd_requests_total")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	path := filepath.Join(t.TempDir(), "zkl.prom")
	require.NoError(t, m.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(b), `zkl_send_stage_total{outcome="ok",stage="Publish"} 2`))
	require.True(t, strings.Contains(string(b), `zkl_ledgerd_requests_total{route="/v1/transactions",status="4xx"} 1`))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.Stage("Publish", "ok")
	m.Send("ok", time.Second)
	require.NoError(t, m.WriteTextfile("/nonexistent/x.prom"))
}
