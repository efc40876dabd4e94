package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/todoassist/internal/profile"
	"github.com/hrygo/todoassist/plugin/ai/aitime"
	"github.com/hrygo/todoassist/plugin/ai/intent"
	"github.com/hrygo/todoassist/server/auth"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
	"github.com/hrygo/todoassist/server/internal/observability"
	apimiddleware "github.com/hrygo/todoassist/server/middleware"
	"github.com/hrygo/todoassist/store"
)

type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	Metrics     *observability.Metrics
	Interpreter *intent.Service
	TimeService aitime.TimeService
	Tokens      *auth.TokenManager

	rateLimiter *apimiddleware.RateLimiter
	// now is overridable in tests.
	now func() time.Time
}

// NewAPIV1Service wires the API. upstream may be nil, in which case every
// interpretation is answered by the local rules.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, upstream intent.Interpreter) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		Metrics:     observability.NewMetrics(1000),
		Interpreter: intent.NewService(upstream, profile.InterpretTimeout),
		TimeService: aitime.NewService(nil),
		Tokens:      auth.NewTokenManager(profile.JWTSecret),
		rateLimiter: apimiddleware.NewRateLimiter(profile.RateLimit, profile.RateBurst),
		now:         time.Now,
	}
}

// Register mounts the routes and middleware on echoServer.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	echoServer.HTTPErrorHandler = HTTPErrorHandler
	echoServer.Use(middleware.Recover())
	echoServer.Use(apimiddleware.RequestLog(slog.Default(), s.Metrics))

	echoServer.GET("/healthz", s.Healthz)

	api := echoServer.Group("/api/v1",
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOriginFunc: func(_ string) (bool, error) {
				return true, nil
			},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		}),
		middleware.BodyLimit("1M"),
		apimiddleware.Authenticate(s.Tokens),
		s.rateLimiter.Middleware(),
	)
	api.POST("/llm/interpret", s.Interpret)
	api.POST("/llm/rewrite", s.Rewrite)
	api.POST("/time/resolve", s.ResolveTime)
	api.GET("/settings/time-defaults", s.GetTimeDefaults)
	api.PUT("/settings/time-defaults", s.UpdateTimeDefaults)
	api.POST("/reminders/next", s.NextReminder)
	api.GET("/system/metrics/overview", s.GetMetricsOverview)
}

// Healthz reports liveness.
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Profile.Version,
	})
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

// HTTPErrorHandler renders APIError and echo errors as ErrorResponse.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		apiErr  *apierrors.APIError
		httpErr *echo.HTTPError
		status  int
		body    ErrorResponse
	)
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus()
		body = ErrorResponse{Code: apiErr.Code, Message: apiErr.Message}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body = ErrorResponse{Code: codeForStatus(status), Message: http.StatusText(status)}
		if msg, ok := httpErr.Message.(string); ok {
			body.Message = msg
		}
	default:
		status = http.StatusInternalServerError
		body = ErrorResponse{Code: apierrors.ErrCodeInternal, Message: "internal error"}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

func codeForStatus(status int) apierrors.ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return apierrors.ErrCodeUnauthorized
	case status == http.StatusTooManyRequests:
		return apierrors.ErrCodeRateLimitExceeded
	case status < http.StatusInternalServerError:
		return apierrors.ErrCodeInvalidArgument
	default:
		return apierrors.ErrCodeInternal
	}
}

// userID returns the authenticated caller.
func userID(c echo.Context) (string, error) {
	id, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return "", apierrors.Unauthorized("authentication required")
	}
	return id, nil
}

// bind decodes the JSON body into req.
func bind(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "malformed request body")
	}
	return nil
}
