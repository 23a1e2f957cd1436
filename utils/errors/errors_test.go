package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIError_Kind(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusTooManyRequests, KindTooManyRequests},
		{http.StatusInternalServerError, KindInternal},
		{http.StatusBadGateway, KindInternal},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, NewAPIError("X", "x", tt.status).Kind)
		})
	}
}

func TestAPIError_WithDetailsKeepsIdentity(t *testing.T) {
	err := ErrInvalidInput.WithDetails("email is required")

	assert.Equal(t, "email is required", err.Details)
	assert.Empty(t, ErrInvalidInput.Details, "original must not be mutated")
	assert.True(t, stderrors.Is(err, ErrInvalidInput))
	assert.False(t, stderrors.Is(err, ErrNotFound))
}

func TestAPIError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("respond: %w", ErrRequestNotPending)

	assert.True(t, stderrors.Is(wrapped, ErrRequestNotPending))
	assert.Equal(t, "REQUEST_NOT_PENDING: Friend request is no longer pending", ErrRequestNotPending.Error())
}

func TestWrap(t *testing.T) {
	t.Run("passes api errors through", func(t *testing.T) {
		assert.Same(t, ErrUserNotFound, Wrap(ErrUserNotFound, "OTHER", "other", http.StatusTeapot))
	})

	t.Run("wraps plain errors", func(t *testing.T) {
		err := Internal(stderrors.New("connection reset"), "failed to load user")
		assert.Equal(t, ErrInternal.Code, err.Code)
		assert.Equal(t, http.StatusInternalServerError, err.Status)
		assert.Equal(t, KindInternal, err.Kind)
		assert.Equal(t, "connection reset", err.Details)
	})
}

func TestAPIError_JSONShape(t *testing.T) {
	body, err := json.Marshal(ErrUnauthorized)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "UNAUTHORIZED", got["code"])
	assert.Equal(t, "Not authenticated", got["error"])
	assert.Equal(t, "unauthorized", got["kind"])
	assert.EqualValues(t, 401, got["status"])
	assert.NotContains(t, got, "details")
}
