// Package schedule holds the recurrence rules attached to reminders.
package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Frequencies supported by RecurrenceRule.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

// DefaultTime is used when a rule carries no clock time.
const DefaultTime = "09:00"

// weekdayCodes maps RFC 5545 weekday codes to time.Weekday.
var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var ruleTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// RecurrenceRule describes a repeating reminder schedule.
type RecurrenceRule struct {
	Frequency  string   `json:"frequency"`
	Interval   int      `json:"interval,omitempty"`   // every N periods, defaults to 1
	ByWeekday  []string `json:"byweekday,omitempty"`  // MO..SU, weekly only
	ByMonthDay []int    `json:"bymonthday,omitempty"` // 1-31, monthly only
	Time       string   `json:"time"`                 // HH:MM local wall clock
}

// Validate checks the rule's fields.
func (r *RecurrenceRule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return fmt.Errorf("unsupported frequency %q", r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("interval must be >= 1, got %d", r.Interval)
	}
	for _, code := range r.ByWeekday {
		if _, ok := weekdayCodes[code]; !ok {
			return fmt.Errorf("invalid weekday code %q", code)
		}
	}
	for _, day := range r.ByMonthDay {
		if day < 1 || day > 31 {
			return fmt.Errorf("invalid day of month %d", day)
		}
	}
	if r.Time != "" && !ruleTimePattern.MatchString(r.Time) {
		return fmt.Errorf("invalid time %q: want HH:MM", r.Time)
	}
	return nil
}

func (r *RecurrenceRule) interval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

func (r *RecurrenceRule) clock() (hour, minute int) {
	value := r.Time
	if value == "" {
		value = DefaultTime
	}
	m := ruleTimePattern.FindStringSubmatch(value)
	if m == nil {
		return 9, 0
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute
}

// Next returns the first trigger strictly after `after`, evaluated in loc.
// Periods are counted from the one containing `after`: the current period's
// remaining slots come first, then the period Interval steps ahead.
// Month days that do not exist in a month are skipped.
func (r *RecurrenceRule) Next(after time.Time, loc *time.Location) (time.Time, bool) {
	if err := r.Validate(); err != nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	local := after.In(loc)

	switch r.Frequency {
	case FrequencyDaily:
		return r.nextDaily(local), true
	case FrequencyWeekly:
		return r.nextWeekly(local), true
	case FrequencyMonthly:
		return r.nextMonthly(local)
	case FrequencyYearly:
		return r.nextYearly(local)
	}
	return time.Time{}, false
}

func (r *RecurrenceRule) slot(year int, month time.Month, day int, loc *time.Location) time.Time {
	hour, minute := r.clock()
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func (r *RecurrenceRule) nextDaily(after time.Time) time.Time {
	today := r.slot(after.Year(), after.Month(), after.Day(), after.Location())
	if today.After(after) {
		return today
	}
	return today.AddDate(0, 0, r.interval())
}

func (r *RecurrenceRule) weekdays(after time.Time) []int {
	if len(r.ByWeekday) == 0 {
		return []int{mondayIndex(after.Weekday())}
	}
	days := make([]int, 0, len(r.ByWeekday))
	for _, code := range r.ByWeekday {
		days = append(days, mondayIndex(weekdayCodes[code]))
	}
	sort.Ints(days)
	return days
}

func (r *RecurrenceRule) nextWeekly(after time.Time) time.Time {
	days := r.weekdays(after)
	monday := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, after.Location()).
		AddDate(0, 0, -mondayIndex(after.Weekday()))

	for _, offset := range days {
		d := monday.AddDate(0, 0, offset)
		if t := r.slot(d.Year(), d.Month(), d.Day(), after.Location()); t.After(after) {
			return t
		}
	}
	d := monday.AddDate(0, 0, 7*r.interval()+days[0])
	return r.slot(d.Year(), d.Month(), d.Day(), after.Location())
}

// maxMonthSteps bounds the search for a month containing a selected day.
const maxMonthSteps = 48

func (r *RecurrenceRule) nextMonthly(after time.Time) (time.Time, bool) {
	days := append([]int(nil), r.ByMonthDay...)
	if len(days) == 0 {
		days = []int{after.Day()}
	}
	sort.Ints(days)

	first := time.Date(after.Year(), after.Month(), 1, 0, 0, 0, 0, after.Location())
	for step := 0; step < maxMonthSteps; step++ {
		month := first.AddDate(0, step*r.interval(), 0)
		last := getLastDayOfMonth(month.Year(), month.Month())
		for _, day := range days {
			if day > last {
				continue
			}
			if t := r.slot(month.Year(), month.Month(), day, after.Location()); t.After(after) {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func (r *RecurrenceRule) nextYearly(after time.Time) (time.Time, bool) {
	month, day := after.Month(), after.Day()
	for step := 0; step < maxMonthSteps; step++ {
		year := after.Year() + step*r.interval()
		if day > getLastDayOfMonth(year, month) {
			continue
		}
		if t := r.slot(year, month, day, after.Location()); t.After(after) {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToRRULE renders the rule as an RFC 5545 RRULE value.
func (r *RecurrenceRule) ToRRULE() string {
	parts := []string{"FREQ=" + strings.ToUpper(r.Frequency)}
	if r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}
	if len(r.ByWeekday) > 0 {
		parts = append(parts, "BYDAY="+strings.Join(r.ByWeekday, ","))
	}
	if len(r.ByMonthDay) > 0 {
		parts = append(parts, "BYMONTHDAY="+intListToString(r.ByMonthDay))
	}
	hour, minute := r.clock()
	parts = append(parts, fmt.Sprintf("BYHOUR=%d", hour), fmt.Sprintf("BYMINUTE=%d", minute))
	return strings.Join(parts, ";")
}

var (
	dailyPattern   = regexp.MustCompile(`^每(\d+)?天$`)
	weeklyPattern  = regexp.MustCompile(`^每(\d+)?(?:周|星期)([一二三四五六日天])?$`)
	monthlyPattern = regexp.MustCompile(`^每(\d+)?个?月(\d{1,2})[日号]?$`)
	yearlyPattern  = regexp.MustCompile(`^每(\d+)?年$`)
	clockSuffix    = regexp.MustCompile(`(\d{1,2})(?:[:：](\d{2})|点(半)?)$`)
)

var chineseWeekdayCodes = map[string]string{
	"一": "MO",
	"二": "TU",
	"三": "WE",
	"四": "TH",
	"五": "FR",
	"六": "SA",
	"日": "SU",
	"天": "SU",
}

// ParseRecurrenceRule parses a short recurrence phrase.
// Examples:
//   - "每天" → daily
//   - "每3天" → daily, interval 3
//   - "每周一9点" → weekly on MO at 09:00
//   - "每2周" → weekly, interval 2
//   - "每月25号8:00" → monthly on day 25 at 08:00
//   - "每年" → yearly
func ParseRecurrenceRule(text string) (*RecurrenceRule, error) {
	text = strings.TrimSpace(text)
	rule := &RecurrenceRule{Interval: 1, Time: DefaultTime}

	if m := clockSuffix.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		} else if m[3] != "" {
			minute = 30
		}
		if hour > 23 || minute > 59 {
			return nil, fmt.Errorf("invalid clock in recurrence: %s", text)
		}
		rule.Time = fmt.Sprintf("%02d:%02d", hour, minute)
		text = strings.TrimSpace(strings.TrimSuffix(text, m[0]))
	}

	switch {
	case dailyPattern.MatchString(text):
		m := dailyPattern.FindStringSubmatch(text)
		rule.Frequency = FrequencyDaily
		rule.Interval = parseInterval(m[1])
	case weeklyPattern.MatchString(text):
		m := weeklyPattern.FindStringSubmatch(text)
		rule.Frequency = FrequencyWeekly
		rule.Interval = parseInterval(m[1])
		if m[2] != "" {
			rule.ByWeekday = []string{chineseWeekdayCodes[m[2]]}
		}
	case monthlyPattern.MatchString(text):
		m := monthlyPattern.FindStringSubmatch(text)
		day, _ := strconv.Atoi(m[2])
		if day < 1 || day > 31 {
			return nil, fmt.Errorf("invalid day of month: %s", text)
		}
		rule.Frequency = FrequencyMonthly
		rule.Interval = parseInterval(m[1])
		rule.ByMonthDay = []int{day}
	case yearlyPattern.MatchString(text):
		m := yearlyPattern.FindStringSubmatch(text)
		rule.Frequency = FrequencyYearly
		rule.Interval = parseInterval(m[1])
	default:
		return nil, fmt.Errorf("unsupported recurrence pattern: %s", text)
	}
	return rule, nil
}

// mondayIndex converts a weekday to a Monday-based index (Monday = 0).
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// getLastDayOfMonth returns the last day of the month.
func getLastDayOfMonth(year int, month time.Month) int {
	// First day of next month minus 1 day
	firstOfMonth := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1).Day()
}

// parseInterval parses an optional interval, defaulting to 1.
func parseInterval(s string) int {
	val, err := strconv.Atoi(s)
	if err != nil || val < 1 {
		return 1
	}
	return val
}

func intListToString(nums []int) string {
	strs := make([]string, len(nums))
	for i, num := range nums {
		strs[i] = strconv.Itoa(num)
	}
	return strings.Join(strs, ",")
}
