package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/todoassist/server/auth"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
	"github.com/hrygo/todoassist/server/internal/observability"
)

const bearerPrefix = "Bearer "

// Authenticate requires a valid bearer token and stores its subject as the
// request's user ID.
func Authenticate(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return apierrors.Unauthorized("missing bearer token")
			}
			claims, err := tokens.ParseToken(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				return apierrors.Wrap(err, apierrors.ErrCodeUnauthorized, "invalid bearer token")
			}

			ctx := auth.WithUserID(c.Request().Context(), claims.UserID())
			if reqCtx, ok := observability.FromContext(ctx); ok {
				reqCtx.UserID = claims.UserID()
			}
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
