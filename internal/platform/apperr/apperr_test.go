// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authpanel/internal/platform/apperr"
)

func TestConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"not_found", apperr.NotFound("User"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", apperr.Unauthorized("nope"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"conflict_is_400", apperr.Conflict("dup"), http.StatusBadRequest, "CONFLICT"},
		{"invalid_token", apperr.InvalidToken("expired"), http.StatusBadRequest, "INVALID_TOKEN"},
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"rate_limited", apperr.RateLimited(60), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"internal", apperr.Internal(errors.New("db down")), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation users does not exist")
	err := apperr.Internal(cause)

	assert.NotContains(t, err.Error(), "relation")
	assert.ErrorIs(t, err, cause)
}

func TestAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", apperr.InvalidToken("gone"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_TOKEN", ae.Code)
	assert.True(t, apperr.HasCode(wrapped, "INVALID_TOKEN"))
	assert.False(t, apperr.HasCode(errors.New("plain"), "INVALID_TOKEN"))
}

func TestIs_MatchesByCode(t *testing.T) {
	sentinel := apperr.NotFound("Resource")
	other := apperr.NotFound("User")

	assert.ErrorIs(t, fmt.Errorf("wrap: %w", other), sentinel)
	assert.NotErrorIs(t, apperr.Unauthorized("x"), sentinel)
}
