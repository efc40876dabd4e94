package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/todoassist/server/internal/errors"
	"github.com/hrygo/todoassist/server/internal/observability"
)

// RequestLog attaches a RequestContext to every request, echoes its ID in
// the X-Request-ID header, then logs and records the outcome.
func RequestLog(logger *slog.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			operation := req.Method + " " + c.Path()
			reqCtx := observability.NewRequestContextWithID(logger, req.Header.Get(echo.HeaderXRequestID), operation)
			c.Response().Header().Set(echo.HeaderXRequestID, reqCtx.RequestID)
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))

			err := next(c)

			status := c.Response().Status
			if err != nil {
				var (
					apiErr  *apierrors.APIError
					httpErr *echo.HTTPError
				)
				switch {
				case errors.As(err, &apiErr):
					status = apiErr.HTTPStatus()
				case errors.As(err, &httpErr):
					status = httpErr.Code
				default:
					status = http.StatusInternalServerError
				}
			}
			failed := status >= http.StatusInternalServerError
			if metrics != nil {
				metrics.RecordRequest(operation, reqCtx.Duration(), failed)
			}

			attrs := []slog.Attr{
				slog.Int("status", status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
			}
			switch {
			case failed:
				reqCtx.Error("request failed", err, attrs...)
			case err != nil:
				attrs = append(attrs, slog.String(observability.LogFieldErrorCode, string(apierrors.GetCodeFromError(err, apierrors.ErrCodeInvalidArgument))))
				reqCtx.Warn("request rejected", attrs...)
			default:
				reqCtx.Info("request completed", attrs...)
			}
			return err
		}
	}
}
