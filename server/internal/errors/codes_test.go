package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *APIError
		want int
	}{
		{InvalidArgument("bad"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{RateLimitExceeded("slow down"), http.StatusTooManyRequests},
		{UpstreamUnavailable("llm down", nil), http.StatusBadGateway},
		{Timeout("too slow"), http.StatusGatewayTimeout},
		{Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAPIError_Wrapping(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Internal("save settings", cause).WithContext("user_id", "u1")

	assert.Equal(t, "[INTERNAL] save settings: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "u1", err.Context["user_id"])

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, IsCode(wrapped, ErrCodeInternal))
	assert.False(t, IsCode(wrapped, ErrCodeTimeout))
	assert.Equal(t, ErrCodeInternal, GetCodeFromError(wrapped, ErrCodeInvalidArgument))
	assert.Equal(t, ErrCodeInvalidArgument, GetCodeFromError(cause, ErrCodeInvalidArgument))
}
