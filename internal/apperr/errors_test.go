package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", BadRequest("missing %s", "parcelId"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("admin only"), http.StatusForbidden},
		{"not found", NotFound("parcel %d not found", 7), http.StatusNotFound},
		{"conflict", Conflict("already cashed out"), http.StatusConflict},
		{"internal", Internal(errors.New("db down"), "failed to load parcel"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("assign: %w", NotFound("rider not found")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageHidesCause(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"), "failed to load parcel")
	assert.Equal(t, "failed to load parcel", PublicMessage(err))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw")))
	assert.Equal(t, "already cashed out", PublicMessage(Conflict("already cashed out")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Internal(cause, "insert failed")
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindInternal))
	assert.False(t, Is(nil, KindInternal))
}
