// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package observability_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unidavemeyer/web-adventure/internal/observability"
)

func startServer(t *testing.T, ready observability.ReadinessChecker) *observability.Server {
	t.Helper()

	srv := observability.NewServer("127.0.0.1:0", ready)
	errCh, err := srv.Start()
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, srv.Stop(ctx))
		for range errCh {
		}
	})

	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test-local address
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Liveness(t *testing.T) {
	srv := startServer(t, nil)

	code, body := get(t, fmt.Sprintf("http://%s/healthz/liveness", srv.Addr()))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)
}

func TestServer_Readiness(t *testing.T) {
	ready := false
	srv := startServer(t, func() bool { return ready })
	url := fmt.Sprintf("http://%s/healthz/readiness", srv.Addr())

	code, body := get(t, url)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready\n", body)

	ready = true
	code, body = get(t, url)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := startServer(t, nil)

	srv.Metrics().NavigationsTotal.Inc()
	srv.Metrics().SavesTotal.WithLabelValues("ok").Inc()

	code, body := get(t, fmt.Sprintf("http://%s/metrics", srv.Addr()))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "webadventure_navigations_total 1")
	assert.Contains(t, body, `webadventure_session_saves_total{result="ok"} 1`)
}

func TestServer_DoubleStartRejected(t *testing.T) {
	srv := startServer(t, nil)

	_, err := srv.Start()
	assert.Error(t, err)
}

func TestServer_StopIsIdempotent(t *testing.T) {
	srv := observability.NewServer("127.0.0.1:0", nil)
	errCh, err := srv.Start()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, srv.Stop(ctx))
	for range errCh {
	}
}

func TestNewMetrics_RegistersCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.NavigationsTotal.Inc()
	m.AuthTotal.WithLabelValues("rejected").Inc()
	m.LoadErrorsTotal.Add(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.NavigationsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthTotal.WithLabelValues("rejected")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.LoadErrorsTotal))

	// Registering the same names twice must panic via MustRegister.
	assert.Panics(t, func() { observability.NewMetrics(reg) })
}
