// Package aitime resolves Chinese and English date/time phrases into
// absolute instants relative to a per-request temporal context.
package aitime

import (
	"context"
	"errors"
	"time"
)

// ErrUnresolved is returned when a phrase carries no usable day or time.
var ErrUnresolved = errors.New("time phrase could not be resolved")

// TimeService is the injectable form of the resolver.
type TimeService interface {
	// Resolve converts a phrase such as "明天下午3点" or "下周三" into an instant.
	Resolve(ctx context.Context, phrase string, tc TemporalContext) (time.Time, error)

	// Range returns the window named by a query range keyword
	// ("today", "this_week", ...).
	Range(ctx context.Context, name string, tc TemporalContext) (TimeRange, error)
}

// TimeRange represents a half-open time range [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
