package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/todoassist/plugin/ai/intent"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
	"github.com/hrygo/todoassist/server/internal/observability"
)

// InterpretRequest is the body of POST /api/v1/llm/interpret.
type InterpretRequest struct {
	Messages []intent.Message `json:"messages"`
	// UpstreamOnly disables the rule fallback; upstream failures surface
	// as UPSTREAM_UNAVAILABLE.
	UpstreamOnly bool `json:"upstreamOnly,omitempty"`
	TemporalOptions
}

// RewriteRequest is the body of POST /api/v1/llm/rewrite.
type RewriteRequest struct {
	intent.RewriteRequest
	TemporalOptions
}

// Interpret classifies a conversation into a todo intent.
// POST /api/v1/llm/interpret
func (s *APIV1Service) Interpret(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	req := &InterpretRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	if len(req.Messages) == 0 {
		return apierrors.InvalidArgument("messages is required")
	}
	for _, m := range req.Messages {
		switch m.Role {
		case intent.RoleSystem, intent.RoleUser, intent.RoleAssistant:
		default:
			return apierrors.InvalidArgument("unknown message role").WithContext("role", m.Role)
		}
	}

	ctx := c.Request().Context()
	tc, err := s.temporalContext(ctx, uid, req.TemporalOptions, s.now())
	if err != nil {
		return err
	}

	var (
		result intent.Result
		source = intent.SourceUpstream
	)
	if req.UpstreamOnly {
		result, err = s.Interpreter.InterpretUpstream(ctx, req.Messages, tc)
		if err != nil {
			return apierrors.UpstreamUnavailable("upstream interpreter unavailable", err)
		}
	} else {
		result, source = s.Interpreter.Interpret(ctx, req.Messages, tc)
	}
	s.Metrics.RecordIntent(string(result.Intent), source == intent.SourceRules)

	reqCtx := observability.FromContextOrNew(ctx, "interpret")
	reqCtx.Debug("interpreted",
		slog.String(observability.LogFieldIntent, string(result.Intent)),
		slog.String(observability.LogFieldSource, string(source)),
		slog.Float64("confidence", result.Confidence),
	)
	return c.JSON(http.StatusOK, result)
}

// Rewrite polishes a todo into formal written style.
// POST /api/v1/llm/rewrite
func (s *APIV1Service) Rewrite(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	req := &RewriteRequest{}
	if err := bind(c, req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	tc, err := s.temporalContext(ctx, uid, req.TemporalOptions, s.now())
	if err != nil {
		return err
	}

	rewrite, source := s.Interpreter.Rewrite(ctx, req.RewriteRequest, tc)
	observability.FromContextOrNew(ctx, "rewrite").Debug("rewrote todo",
		slog.String(observability.LogFieldSource, string(source)),
		slog.Int("keywords", len(rewrite.Keywords)),
	)
	return c.JSON(http.StatusOK, rewrite)
}
