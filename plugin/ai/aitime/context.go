package aitime

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Period names used as keys of TimeDefaults.
const (
	PeriodMorning   = "morning"
	PeriodNoon      = "noon"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
)

var clockValuePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

// TimeDefaults maps a period of day to an "HH:MM[:SS]" clock string.
type TimeDefaults map[string]string

// DefaultTimeDefaults returns the built-in period defaults.
func DefaultTimeDefaults() TimeDefaults {
	return TimeDefaults{
		PeriodMorning:   "09:00",
		PeriodNoon:      "12:00",
		PeriodAfternoon: "15:00",
		PeriodEvening:   "20:00",
	}
}

// IsValidClock reports whether value matches HH:MM or HH:MM:SS.
func IsValidClock(value string) bool {
	return clockValuePattern.MatchString(value)
}

// IsKnownPeriod reports whether period is one of the configurable periods.
func IsKnownPeriod(period string) bool {
	switch period {
	case PeriodMorning, PeriodNoon, PeriodAfternoon, PeriodEvening:
		return true
	}
	return false
}

// Set stores value for period. Malformed values and unknown periods are
// rejected and the previous value is kept.
func (d TimeDefaults) Set(period, value string) error {
	if !IsKnownPeriod(period) {
		return fmt.Errorf("unknown period %q", period)
	}
	if !IsValidClock(value) {
		return fmt.Errorf("invalid clock %q for %s: want HH:MM or HH:MM:SS", value, period)
	}
	d[period] = value
	return nil
}

// Validate checks every entry without modifying the receiver.
func (d TimeDefaults) Validate() error {
	for period, value := range d {
		if !IsKnownPeriod(period) {
			return fmt.Errorf("unknown period %q", period)
		}
		if !IsValidClock(value) {
			return fmt.Errorf("invalid clock %q for %s: want HH:MM or HH:MM:SS", value, period)
		}
	}
	return nil
}

// Merge returns a copy of d overlaid with the valid entries of override.
// Invalid entries in override are ignored.
func (d TimeDefaults) Merge(override TimeDefaults) TimeDefaults {
	merged := d.Clone()
	for period, value := range override {
		_ = merged.Set(period, value)
	}
	return merged
}

// Clone returns a shallow copy.
func (d TimeDefaults) Clone() TimeDefaults {
	out := make(TimeDefaults, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Clock returns the hour, minute and second configured for period, falling
// back to the built-in default when the entry is missing.
func (d TimeDefaults) Clock(period string) (hour, minute, second int) {
	value, ok := d[period]
	if !ok {
		value = DefaultTimeDefaults()[period]
	}
	return splitClock(value)
}

// splitClock parses "HH:MM[:SS]". The value is trusted to be well formed.
func splitClock(value string) (hour, minute, second int) {
	if len(value) < 5 {
		return 9, 0, 0
	}
	hour, _ = strconv.Atoi(value[0:2])
	minute, _ = strconv.Atoi(value[3:5])
	if len(value) >= 8 {
		second, _ = strconv.Atoi(value[6:8])
	}
	return hour, minute, second
}

// TemporalContext is the per-request input shared by the resolver and the
// intent classifier. Now must be captured once per logical request.
type TemporalContext struct {
	Now time.Time
	// OffsetMinutes is added to UTC to obtain local wall time (UTC+8 is 480).
	// It is the negation of the browser's Date.getTimezoneOffset().
	OffsetMinutes int
	Defaults      TimeDefaults
}

// NewTemporalContext builds a context with the built-in defaults overlaid by
// the given ones.
func NewTemporalContext(now time.Time, offsetMinutes int, defaults TimeDefaults) TemporalContext {
	return TemporalContext{
		Now:           now,
		OffsetMinutes: offsetMinutes,
		Defaults:      DefaultTimeDefaults().Merge(defaults),
	}
}

// Location returns the fixed zone for the caller's offset.
func (tc TemporalContext) Location() *time.Location {
	if tc.OffsetMinutes == 0 {
		return time.UTC
	}
	return time.FixedZone(formatOffset(tc.OffsetMinutes), tc.OffsetMinutes*60)
}

// LocalNow returns Now expressed in the caller's wall clock.
func (tc TemporalContext) LocalNow() time.Time {
	return tc.Now.In(tc.Location())
}

// Wall builds an instant from local wall-clock components.
func (tc TemporalContext) Wall(year int, month time.Month, day, hour, minute, second int) time.Time {
	return time.Date(year, month, day, hour, minute, second, 0, tc.Location())
}

func (tc TemporalContext) defaults() TimeDefaults {
	if tc.Defaults == nil {
		return DefaultTimeDefaults()
	}
	return tc.Defaults
}

func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, minutes/60, minutes%60)
}

// FormatISO renders t as UTC ISO-8601 without fractional seconds.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ISOLayout is the wire format of resolved timestamps.
const ISOLayout = "2006-01-02T15:04:05Z"
