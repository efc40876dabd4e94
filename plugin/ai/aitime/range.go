package aitime

import "time"

// Query range names.
const (
	RangeToday     = "today"
	RangeTomorrow  = "tomorrow"
	RangeThisWeek  = "this_week"
	RangeNextWeek  = "next_week"
	RangeThisMonth = "this_month"
)

// ResolveRange returns the local wall-time window for a named range.
// Weeks start on Monday.
func ResolveRange(name string, tc TemporalContext) (TimeRange, bool) {
	now := tc.LocalNow()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch name {
	case RangeToday:
		return TimeRange{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}, true
	case RangeTomorrow:
		start := dayStart.AddDate(0, 0, 1)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}, true
	case RangeThisWeek:
		monday := StartOfWeek(now)
		return TimeRange{Start: monday, End: monday.AddDate(0, 0, 7)}, true
	case RangeNextWeek:
		monday := StartOfWeek(now).AddDate(0, 0, 7)
		return TimeRange{Start: monday, End: monday.AddDate(0, 0, 7)}, true
	case RangeThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return TimeRange{Start: start, End: start.AddDate(0, 1, 0)}, true
	}
	return TimeRange{}, false
}
