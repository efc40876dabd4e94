package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRRULE parses the RFC 5545 subset produced by ToRRULE.
// Example: "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,FR;BYHOUR=9;BYMINUTE=30"
func ParseRRULE(value string) (*RecurrenceRule, error) {
	rule := &RecurrenceRule{Interval: 1}
	hour, minute := 9, 0

	value = strings.TrimPrefix(strings.TrimSpace(value), "RRULE:")
	for _, part := range strings.Split(value, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed RRULE part %q", part)
		}
		key := strings.ToUpper(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		var err error
		switch key {
		case "FREQ":
			rule.Frequency = strings.ToLower(val)
		case "INTERVAL":
			rule.Interval, err = strconv.Atoi(val)
		case "BYDAY":
			for _, day := range strings.Split(val, ",") {
				rule.ByWeekday = append(rule.ByWeekday, strings.ToUpper(strings.TrimSpace(day)))
			}
		case "BYMONTHDAY":
			rule.ByMonthDay, err = parseIntList(val)
		case "BYHOUR":
			hour, err = strconv.Atoi(val)
		case "BYMINUTE":
			minute, err = strconv.Atoi(val)
		default:
			return nil, fmt.Errorf("unsupported RRULE part %s", key)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid %s in RRULE: %w", key, err)
		}
	}

	if rule.Frequency == "" {
		return nil, fmt.Errorf("missing required FREQ in RRULE")
	}
	if rule.Interval < 1 {
		return nil, fmt.Errorf("interval must be >= 1, got %d", rule.Interval)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid clock %d:%d in RRULE", hour, minute)
	}
	rule.Time = fmt.Sprintf("%02d:%02d", hour, minute)

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

func parseIntList(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	nums := make([]int, 0, len(parts))
	for _, part := range parts {
		num, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		nums = append(nums, num)
	}
	return nums, nil
}

// Occurrences returns up to n triggers strictly after after.
func (r *RecurrenceRule) Occurrences(after time.Time, loc *time.Location, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	current := after
	for len(out) < n {
		next, ok := r.Next(current, loc)
		if !ok {
			break
		}
		out = append(out, next)
		current = next
	}
	return out
}
