package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
)

// ResolveTimeRequest is the body of POST /api/v1/time/resolve.
type ResolveTimeRequest struct {
	Phrase string `json:"phrase"`
	// Range names a query window ("today", "this_week", ...) instead of a phrase.
	Range string `json:"range,omitempty"`
	// Now overrides the reference instant (RFC 3339).
	Now string `json:"now,omitempty"`
	TemporalOptions
}

// ResolveTimeResponse is the preview result. Unresolved phrases are not
// errors.
type ResolveTimeResponse struct {
	Resolved bool              `json:"resolved"`
	Time     string            `json:"time,omitempty"`
	Range    *aitime.TimeRange `json:"range,omitempty"`
}

// ResolveTime previews the instant a phrase resolves to.
// POST /api/v1/time/resolve
func (s *APIV1Service) ResolveTime(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	req := &ResolveTimeRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	req.Phrase = strings.TrimSpace(req.Phrase)
	if req.Phrase == "" && req.Range == "" {
		return apierrors.InvalidArgument("phrase or range is required")
	}

	now := s.now()
	if req.Now != "" {
		parsed, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "now must be RFC 3339")
		}
		now = parsed
	}

	ctx := c.Request().Context()
	tc, err := s.temporalContext(ctx, uid, req.TemporalOptions, now)
	if err != nil {
		return err
	}

	if req.Range != "" {
		r, err := s.TimeService.Range(ctx, req.Range, tc)
		if err != nil {
			if ctxErr := contextError(err); ctxErr != nil {
				return ctxErr
			}
			return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "unknown range")
		}
		return c.JSON(http.StatusOK, ResolveTimeResponse{Resolved: true, Range: &r})
	}

	t, err := s.TimeService.Resolve(ctx, req.Phrase, tc)
	if err != nil {
		if errors.Is(err, aitime.ErrUnresolved) {
			return c.JSON(http.StatusOK, ResolveTimeResponse{Resolved: false})
		}
		if ctxErr := contextError(err); ctxErr != nil {
			return ctxErr
		}
		return apierrors.Internal("failed to resolve time", err)
	}
	return c.JSON(http.StatusOK, ResolveTimeResponse{Resolved: true, Time: aitime.FormatISO(t)})
}

// contextError maps cancellation and deadline errors, returning nil for
// anything else.
func contextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apierrors.Timeout("request timed out")
	case errors.Is(err, context.Canceled):
		return apierrors.Wrap(err, apierrors.ErrCodeInternal, "request cancelled")
	}
	return nil
}
