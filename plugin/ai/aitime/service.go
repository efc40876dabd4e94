package aitime

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service implements TimeService with the rule-based resolver.
type Service struct {
	defaults TimeDefaults
}

// NewService creates a time service. defaults fill any periods missing from
// the per-call context.
func NewService(defaults TimeDefaults) *Service {
	return &Service{
		defaults: DefaultTimeDefaults().Merge(defaults),
	}
}

// Resolve converts a phrase into an instant.
func (s *Service) Resolve(ctx context.Context, phrase string, tc TemporalContext) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	tc.Defaults = s.defaults.Merge(tc.Defaults)

	t, ok := Resolve(phrase, tc)
	if !ok {
		slog.Debug("time service could not resolve phrase", "phrase", phrase)
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnresolved, phrase)
	}
	return t, nil
}

// Range returns the window for a named query range.
func (s *Service) Range(ctx context.Context, name string, tc TemporalContext) (TimeRange, error) {
	if err := ctx.Err(); err != nil {
		return TimeRange{}, err
	}
	r, ok := ResolveRange(name, tc)
	if !ok {
		return TimeRange{}, fmt.Errorf("unknown range %q", name)
	}
	return r, nil
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
