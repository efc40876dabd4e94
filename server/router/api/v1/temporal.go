package v1

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
	"github.com/hrygo/todoassist/server/timezone"
)

// Offsets outside this range do not exist on Earth.
const (
	minOffsetMinutes = -12 * 60
	maxOffsetMinutes = 14 * 60
)

// TemporalOptions are the time-related fields shared by several requests.
type TemporalOptions struct {
	// TimezoneOffsetMinutes is added to UTC to get the caller's wall time.
	TimezoneOffsetMinutes *int `json:"timezoneOffsetMinutes,omitempty"`
	// Timezone is an IANA name used when no offset is given.
	Timezone     string              `json:"timezone,omitempty"`
	TimeDefaults aitime.TimeDefaults `json:"timeDefaults,omitempty"`
}

// temporalContext builds the per-request context. Defaults are layered as
// built-ins, then the caller's persisted settings, then the request's own
// valid entries.
func (s *APIV1Service) temporalContext(ctx context.Context, userID string, opts TemporalOptions, now time.Time) (aitime.TemporalContext, error) {
	offset := s.Profile.DefaultOffsetMinutes
	switch {
	case opts.TimezoneOffsetMinutes != nil:
		offset = *opts.TimezoneOffsetMinutes
		if offset < minOffsetMinutes || offset > maxOffsetMinutes {
			return aitime.TemporalContext{}, apierrors.InvalidArgument("timezoneOffsetMinutes is out of range").
				WithContext("offset", offset)
		}
	case opts.Timezone != "":
		var err error
		offset, err = timezone.OffsetMinutesAt(opts.Timezone, now)
		if err != nil {
			return aitime.TemporalContext{}, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "unknown timezone")
		}
	}

	defaults := aitime.DefaultTimeDefaults()
	if s.Store != nil && userID != "" {
		stored, err := s.Store.GetTimeDefaults(ctx, userID)
		if err != nil {
			slog.Warn("failed to load time defaults, using built-ins", "user_id", userID, "error", err)
		} else {
			defaults = stored
		}
	}

	return aitime.TemporalContext{
		Now:           now,
		OffsetMinutes: offset,
		Defaults:      defaults.Merge(opts.TimeDefaults),
	}, nil
}
