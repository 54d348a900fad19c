// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/unidavemeyer/web-adventure/internal/logging"
)

func TestSetup_StampsServiceIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("web-adventure", "1.2.3", "json", &buf)

	logger.Info("hello", "key", "value")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "web-adventure", rec["service"])
	assert.Equal(t, "1.2.3", rec["version"])
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "value", rec["key"])
	assert.NotContains(t, rec, "trace_id")
}

func TestSetup_AddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("web-adventure", "dev", "json", &buf)

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04}
	spanID := trace.SpanID{0x0a, 0x0b}
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, traceID.String(), rec["trace_id"])
	assert.Equal(t, spanID.String(), rec["span_id"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("web-adventure", "dev", "text", &buf)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "service=web-adventure")
	assert.NotContains(t, buf.String(), "{")
}

func TestSetup_WithAttrsKeepsIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("web-adventure", "dev", "json", &buf).With("uid", "ada")

	logger.Info("scoped")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "web-adventure", rec["service"])
	assert.Equal(t, "ada", rec["uid"])
}
