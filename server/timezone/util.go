// Package timezone converts IANA zone names into the fixed minute offsets
// the resolver works with.
package timezone

import (
	"fmt"
	"time"
	// Embed the zone database so lookups work in minimal containers.
	_ "time/tzdata"
)

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Shanghai").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// IsValidTimezone checks if a timezone string is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// OffsetMinutesAt returns the offset of tz at instant t in minutes east of
// UTC, accounting for daylight saving time.
func OffsetMinutesAt(tz string, t time.Time) (int, error) {
	loc, err := ParseTimezone(tz)
	if err != nil {
		return 0, err
	}
	_, seconds := t.In(loc).Zone()
	return seconds / 60, nil
}
