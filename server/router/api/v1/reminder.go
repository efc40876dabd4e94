package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
	"github.com/hrygo/todoassist/plugin/ai/schedule"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
)

// maxUpcoming caps NextReminderRequest.Count.
const maxUpcoming = 50

// NextReminderRequest is the body of POST /api/v1/reminders/next.
// One of RepeatRule, RRule or Repeat (a phrase such as "每周一9点") is required.
type NextReminderRequest struct {
	RepeatRule *schedule.RecurrenceRule `json:"repeatRule,omitempty"`
	RRule      string                   `json:"rrule,omitempty"`
	Repeat     string                   `json:"repeat,omitempty"`
	// Count asks for that many upcoming triggers in addition to Next.
	Count int `json:"count,omitempty"`
	// After is the exclusive lower bound (RFC 3339); defaults to now.
	After                 string `json:"after,omitempty"`
	TimezoneOffsetMinutes *int   `json:"timezoneOffsetMinutes,omitempty"`
	Timezone              string `json:"timezone,omitempty"`
}

// NextReminderResponse reports the next trigger, if any.
type NextReminderResponse struct {
	Found      bool                     `json:"found"`
	Next       string                   `json:"next,omitempty"`
	Upcoming   []string                 `json:"upcoming,omitempty"`
	RepeatRule *schedule.RecurrenceRule `json:"repeatRule"`
	RRule      string                   `json:"rrule"`
}

// NextReminder computes the next trigger of a recurring reminder.
// POST /api/v1/reminders/next
func (s *APIV1Service) NextReminder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	req := &NextReminderRequest{}
	if err := bind(c, req); err != nil {
		return err
	}

	if req.Count < 0 || req.Count > maxUpcoming {
		return apierrors.InvalidArgument("count is out of range").WithContext("count", req.Count)
	}

	rule := req.RepeatRule
	switch {
	case rule != nil:
	case strings.TrimSpace(req.RRule) != "":
		rule, err = schedule.ParseRRULE(req.RRule)
		if err != nil {
			return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, err.Error())
		}
	case strings.TrimSpace(req.Repeat) != "":
		rule, err = schedule.ParseRecurrenceRule(strings.TrimSpace(req.Repeat))
		if err != nil {
			return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "unrecognized repeat phrase")
		}
	default:
		return apierrors.InvalidArgument("repeatRule, rrule or repeat is required")
	}
	if err := rule.Validate(); err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, err.Error())
	}

	after := s.now()
	if req.After != "" {
		after, err = time.Parse(time.RFC3339, req.After)
		if err != nil {
			return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "after must be RFC 3339")
		}
	}

	tc, err := s.temporalContext(c.Request().Context(), uid, TemporalOptions{
		TimezoneOffsetMinutes: req.TimezoneOffsetMinutes,
		Timezone:              req.Timezone,
	}, after)
	if err != nil {
		return err
	}

	resp := NextReminderResponse{RepeatRule: rule, RRule: rule.ToRRULE()}
	if next, ok := rule.Next(after, tc.Location()); ok {
		resp.Found = true
		resp.Next = aitime.FormatISO(next)
	}
	for _, t := range rule.Occurrences(after, tc.Location(), req.Count) {
		resp.Upcoming = append(resp.Upcoming, aitime.FormatISO(t))
	}
	return c.JSON(http.StatusOK, resp)
}
