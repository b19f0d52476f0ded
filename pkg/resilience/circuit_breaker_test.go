package resilience

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []gobreaker.State
	config := DefaultCircuitBreakerConfig("pooling")
	config.FailureThreshold = 2
	config.Timeout = time.Hour
	config.OnStateChange = func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	}
	cb := NewCircuitBreaker(config, quietLogger())

	fail := func() (interface{}, error) { return nil, errBoom }
	for i := 0; i < 2; i++ {
		_, err := cb.Execute(context.Background(), fail)
		require.ErrorIs(t, err, errBoom)
	}

	calls := 0
	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		calls++
		return "ok", nil
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "pooling")
	assert.Zero(t, calls, "open breaker must not call through")
	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
}

func TestCircuitBreaker_PassesResultThrough(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("pooling"), quietLogger())

	result, err := cb.Execute(context.Background(), func() (interface{}, error) { return 42, nil })

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, "pooling", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_CancelledContext(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("pooling"), quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cb.Execute(ctx, func() (interface{}, error) {
		t.Fatal("must not be called")
		return nil, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithResult(t *testing.T) {
	fast := func(retryable func(error) bool) *RetryConfig {
		return &RetryConfig{
			MaxAttempts:     3,
			InitialDelay:    time.Millisecond,
			MaxDelay:        2 * time.Millisecond,
			BackoffFactor:   2,
			RetryableErrors: retryable,
		}
	}
	always := func(error) bool { return true }

	tests := []struct {
		name      string
		config    *RetryConfig
		failures  int
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", fast(always), 0, 1, false},
		{"succeeds after retries", fast(always), 2, 3, false},
		{"gives up after max attempts", fast(always), 5, 3, true},
		{"non-retryable error stops at once", DefaultRetryConfig(), 5, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := RetryWithResult(context.Background(), tt.config, func() (string, error) {
				calls++
				if calls <= tt.failures {
					return "", errBoom
				}
				return "done", nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBoom)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "done", got)
		})
	}
}
