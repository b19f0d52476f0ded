package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"not found", fmt.Errorf("%w: o-1", stderrors.New("order not found")), CodeNotFound, http.StatusNotFound},
		{"duplicate", stderrors.New("duplicate key"), CodeConflict, http.StatusConflict},
		{"action not available", stderrors.New("action cancelOrder not available"), CodeActionUnavailable, http.StatusUnprocessableEntity},
		{"invalid", stderrors.New("invalid delivery date"), CodeValidationError, http.StatusBadRequest},
		{"forbidden", stderrors.New("forbidden for carrier"), CodeForbidden, http.StatusForbidden},
		{"deadline", context.DeadlineExceeded, CodeTimeout, http.StatusGatewayTimeout},
		{"anything else", stderrors.New("boom"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapDomainError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}

	assert.Nil(t, MapDomainError(nil))
}

func TestMapDomainError_KeepsAppErrors(t *testing.T) {
	original := ErrExternalService("pooling", "slot is closed", http.StatusForbidden)
	wrapped := fmt.Errorf("book slot: %w", original)

	assert.Same(t, original, MapDomainError(wrapped))
	assert.Equal(t, "pooling", original.Details["service"])
	assert.Equal(t, "403", original.Details["status"])
}

func TestIsExpected(t *testing.T) {
	assert.True(t, ErrValidation("bad").IsExpected())
	assert.True(t, ErrActionUnavailable("confirmShipping").IsExpected())
	assert.True(t, ErrExternalService("pooling", "down", 500).IsExpected())
	assert.True(t, ErrTimeout("pooling").IsExpected())
	assert.False(t, ErrInternal("").IsExpected())
	assert.False(t, ErrServiceUnavailable("mongodb").IsExpected())
}

func TestAppErrorFormatting(t *testing.T) {
	err := ErrNotFoundWithID("shipping", "s-1").Wrap(stderrors.New("no documents"))
	assert.Equal(t, "RESOURCE_NOT_FOUND: shipping not found: no documents", err.Error())
	assert.Equal(t, "s-1", err.Details["id"])

	assert.Equal(t, "access denied", ErrForbidden("").Message)
	assert.Equal(t, "authentication required", ErrUnauthorized("").Message)
}
