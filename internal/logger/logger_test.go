package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"student-auth/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewWithWriter_JSONAddsTraceContext(t *testing.T) {
	t.Setenv("ENV", "prod")

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	log.InfoContext(ctx, "student registered", "username", "alice")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "student registered", entry["msg"])
	assert.Equal(t, "alice", entry["username"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestNewWithWriter_TextColorsErrors(t *testing.T) {
	if _, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST"); inK8s {
		t.Skip("JSON output is forced inside Kubernetes")
	}
	t.Setenv("ENV", "local")

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)

	log.Info("plain")
	log.Error("boom", "error", "disk full")

	out := buf.String()
	assert.Contains(t, out, "msg=plain")
	// TextHandler quotes the escape sequence
	assert.Contains(t, out, `\x1b[31mboom\x1b[0m`)
	assert.Contains(t, out, "error=\"disk full\"")
	assert.NotContains(t, out, "trace_id")
}
