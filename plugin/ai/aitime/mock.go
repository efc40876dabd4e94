package aitime

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockTimeService is a table-driven TimeService for testing callers.
type MockTimeService struct {
	// FixedNow overrides tc.Now when set.
	FixedNow *time.Time
	// Phrases maps a trimmed phrase to the instant Resolve returns.
	Phrases map[string]time.Time
	// Calls records every phrase passed to Resolve.
	Calls []string
}

// NewMockTimeService creates a new MockTimeService.
func NewMockTimeService() *MockTimeService {
	return &MockTimeService{Phrases: map[string]time.Time{}}
}

// Resolve returns the configured instant for phrase, or ErrUnresolved.
func (m *MockTimeService) Resolve(_ context.Context, phrase string, _ TemporalContext) (time.Time, error) {
	phrase = strings.TrimSpace(phrase)
	m.Calls = append(m.Calls, phrase)
	if t, ok := m.Phrases[phrase]; ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnresolved, phrase)
}

// Range delegates to ResolveRange using FixedNow when set.
func (m *MockTimeService) Range(_ context.Context, name string, tc TemporalContext) (TimeRange, error) {
	if m.FixedNow != nil {
		tc.Now = *m.FixedNow
	}
	r, ok := ResolveRange(name, tc)
	if !ok {
		return TimeRange{}, fmt.Errorf("unknown range %q", name)
	}
	return r, nil
}

// Ensure MockTimeService implements TimeService
var _ TimeService = (*MockTimeService)(nil)
