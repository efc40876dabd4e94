package middleware

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/todoassist/server/auth"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
	"github.com/hrygo/todoassist/server/internal/observability"
)

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func ok(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	// Keys are independent.
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_DropsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 1, 27, 2, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		rl.Allow(fmt.Sprintf("ip:10.0.0.%d", i))
	}
	assert.Equal(t, 100, rl.Len())

	now = now.Add(5 * time.Minute)
	assert.True(t, rl.Allow("user:1"))
	assert.Equal(t, 101, rl.Len())

	// The ip keys have been idle past the TTL, user:1 has not.
	now = now.Add(6 * time.Minute)
	assert.True(t, rl.Allow("user:2"))
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := rl.Middleware()(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "1"))

	c, _ := newContext(req)
	require.NoError(t, handler(c))

	c, _ = newContext(req)
	err := handler(c)
	require.Error(t, err)
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeRateLimitExceeded))

	// Another user still has budget.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other = other.WithContext(auth.WithUserID(other.Context(), "2"))
	c, _ = newContext(other)
	assert.NoError(t, handler(c))
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("secret")
	valid, _, err := tokens.IssueToken("42", time.Hour)
	require.NoError(t, err)

	var gotUser string
	handler := Authenticate(tokens)(func(c echo.Context) error {
		gotUser, _ = auth.UserIDFromContext(c.Request().Context())
		return ok(c)
	})

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{"valid", "Bearer " + valid, false},
		{"missing", "", true},
		{"wrong scheme", "Basic abc", true},
		{"bad token", "Bearer nope", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			c, _ := newContext(req)
			err := handler(c)
			if tt.wantErr {
				assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeUnauthorized))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "42", gotUser)
		})
	}
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	metrics := observability.NewMetrics(10)

	handler := RequestLog(logger, metrics)(func(c echo.Context) error {
		reqCtx, ok := observability.FromContext(c.Request().Context())
		require.True(t, ok)
		assert.Equal(t, "req-7", reqCtx.RequestID)
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-7")
	c, rec := newContext(req)
	require.NoError(t, handler(c))

	assert.Equal(t, "req-7", rec.Header().Get(echo.HeaderXRequestID))
	assert.Contains(t, buf.String(), "request completed")
	assert.Equal(t, int64(1), metrics.Snapshot().RequestTotal)
}

func TestRequestLog_Rejected(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	metrics := observability.NewMetrics(10)

	handler := RequestLog(logger, metrics)(func(echo.Context) error {
		return apierrors.InvalidArgument("bad input")
	})
	c, rec := newContext(httptest.NewRequest(http.MethodPost, "/", nil))
	require.Error(t, handler(c))

	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Contains(t, buf.String(), `"status":400`)
	assert.Contains(t, buf.String(), `"error_code":"INVALID_ARGUMENT"`)
	assert.Equal(t, int64(0), metrics.Snapshot().RequestFailed)
}
