package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	config := DefaultConfig("tms-core")
	config.Level = level
	config.Output = &buf
	return New(config), &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLoggerCarriesRequestContext(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)
	ctx := ContextWithCorrelationID(ContextWithRequestID(context.Background(), "req-1"), "corr-1")
	ctx = ContextWithUserID(ctx, "user-1")

	logger.WithShipping("s-1", "SH000001").WithContext(ctx).WithError(errors.New("boom")).Info("Shipping created")

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "tms-core", e["service"])
	assert.Equal(t, "SH000001", e["shippingNumber"])
	assert.Equal(t, "req-1", e["requestId"])
	assert.Equal(t, "corr-1", e["correlationId"])
	assert.Equal(t, "user-1", e["userId"])
	assert.Equal(t, "boom", e["error"])
}

func TestExternalCallLevel(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success", 200, "INFO"},
		{"rejected by pooling", 403, "WARN"},
		{"no answer", 0, "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelInfo)

			logger.ExternalCall(context.Background(), "pooling", "GetSlots", tt.status, 15*time.Millisecond, map[string]any{"region": "r-1"})

			entries := lines(t, buf)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0]["level"])
			assert.Equal(t, "r-1", entries[0]["region"])
			assert.Equal(t, float64(15), entries[0]["durationMs"])
		})
	}
}

func TestAudit(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	logger.Audit(context.Background(), "cancelOrder", "order", "o-1,o-2", "user-1", map[string]any{"role": "administrator"})

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "cancelOrder", entries[0]["auditAction"])
	assert.Equal(t, "o-1,o-2", entries[0]["resourceId"])
	assert.Equal(t, "administrator", entries[0]["role"])
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn)

	logger.Info("dropped")
	logger.DatabaseQuery(context.Background(), "orders", "find", time.Millisecond, true)
	logger.DatabaseQuery(context.Background(), "orders", "find", time.Millisecond, false)

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, "orders", entries[0]["collection"])
}
