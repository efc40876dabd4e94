package aitime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday 2026-01-27 10:00 in UTC+8.
var refNow = time.Date(2026, 1, 27, 2, 0, 0, 0, time.UTC)

func shanghaiContext() TemporalContext {
	return NewTemporalContext(refNow, 480, nil)
}

func TestResolveISO_Phrases(t *testing.T) {
	tc := shanghaiContext()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"relative day with period", "明天上午", "2026-01-28T01:00:00Z"},
		{"advance modifier", "明天下午3点提前30分钟", "2026-01-28T06:30:00Z"},
		{"advance in hours", "明天10点提前1小时", "2026-01-28T01:00:00Z"},
		{"advance half hour", "明天10点提前半小时", "2026-01-28T01:30:00Z"},
		{"tonight with clock", "今晚8点", "2026-01-27T12:00:00Z"},
		{"chinese numeral clock", "明天下午三点半", "2026-01-28T07:30:00Z"},
		{"day after day after tomorrow", "大后天", "2026-01-30T01:00:00Z"},
		{"english tomorrow", "tomorrow", "2026-01-28T01:00:00Z"},
		{"english day after tomorrow", "Day after tomorrow", "2026-01-29T01:00:00Z"},
		{"next week weekday", "下周三", "2026-02-04T01:00:00Z"},
		{"this week weekday", "这周五下午", "2026-01-30T07:00:00Z"},
		{"bare weekday", "周五下午", "2026-01-30T07:00:00Z"},
		{"weekend", "周末", "2026-01-31T01:00:00Z"},
		{"sunday", "星期天晚上", "2026-02-01T12:00:00Z"},
		{"this week sunday", "本周日", "2026-02-01T01:00:00Z"},
		{"next week sunday", "下个星期天", "2026-02-08T01:00:00Z"},
		{"nth weekday this month", "本月第2个周三", "2026-01-14T01:00:00Z"},
		{"nth weekday next month", "下个月第一个周一上午10点", "2026-02-02T02:00:00Z"},
		{"absolute date and time", "2026-03-15 14:30", "2026-03-15T06:30:00Z"},
		{"slash date", "2026/3/15", "2026-03-15T01:00:00Z"},
		{"chinese date with period", "2026年3月15日下午", "2026-03-15T07:00:00Z"},
		{"bare clock", "8:30", "2026-01-27T00:30:00Z"},
		{"bare period", "下午", "2026-01-27T07:00:00Z"},
		{"point clock with minutes", "今天9点15分", "2026-01-27T01:15:00Z"},
		{"iso with zone", "2026-01-28T09:00:00+08:00", "2026-01-28T01:00:00Z"},
		{"iso without zone", "2026-01-28T09:00:00", "2026-01-28T01:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveISO(tt.input, tc)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Unresolved(t *testing.T) {
	tc := shanghaiContext()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no time signal", "买牛奶"},
		{"recurrence is not a date", "每周一"},
		{"fifth monday overflow", "本月第5个周一"},
		{"invalid calendar date", "2026-02-30"},
		{"invalid month", "2026-13-01"},
		{"invalid clock on a date", "2026-03-15 25:00"},
		{"week followed by 天 is not sunday", "本周天气"},
		{"week count", "一周一次"},
		{"fortnightly count", "每两周一次"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Resolve(tt.input, tc)
			assert.False(t, ok)
		})
	}
}

func TestResolveISO_Idempotent(t *testing.T) {
	tc := shanghaiContext()
	for _, phrase := range []string{"明天上午", "下周三下午4点", "2026-03-15 14:30", "今晚8点"} {
		first, ok := ResolveISO(phrase, tc)
		require.True(t, ok, phrase)

		second, ok := ResolveISO(first, tc)
		require.True(t, ok, first)
		assert.Equal(t, first, second)
	}
}

func TestResolve_OffsetShiftsInstant(t *testing.T) {
	utc := NewTemporalContext(refNow, 0, nil)
	got, ok := ResolveISO("明天上午", utc)
	require.True(t, ok)
	assert.Equal(t, "2026-01-28T09:00:00Z", got)

	// UTC-5: local now is Monday 2026-01-26 21:00.
	newYork := NewTemporalContext(refNow, -300, nil)
	got, ok = ResolveISO("明天上午", newYork)
	require.True(t, ok)
	assert.Equal(t, "2026-01-27T14:00:00Z", got)

	shanghai, ok := Resolve("明天上午", shanghaiContext())
	require.True(t, ok)
	local := shanghai.In(shanghaiContext().Location())
	assert.Equal(t, 9, local.Hour())
	assert.Equal(t, 28, local.Day())
}

func TestResolve_CustomDefaults(t *testing.T) {
	tc := NewTemporalContext(refNow, 480, TimeDefaults{PeriodMorning: "07:30"})

	got, ok := ResolveISO("明天上午", tc)
	require.True(t, ok)
	assert.Equal(t, "2026-01-27T23:30:00Z", got)

	got, ok = ResolveISO("明天晚上", tc)
	require.True(t, ok)
	assert.Equal(t, "2026-01-28T12:00:00Z", got)
}

func TestResolve_AfternoonCoercesOnce(t *testing.T) {
	tc := shanghaiContext()

	got, ok := ResolveISO("明天下午15点", tc)
	require.True(t, ok)
	assert.Equal(t, "2026-01-28T07:00:00Z", got)

	got, ok = ResolveISO("明天上午11点", tc)
	require.True(t, ok)
	assert.Equal(t, "2026-01-28T03:00:00Z", got)
}

func TestNthWeekdayOfMonth(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			for n := 1; n <= 5; n++ {
				day, ok := NthWeekdayOfMonth(2026, month, wd, n)
				if !ok {
					continue
				}
				date := time.Date(2026, month, day, 0, 0, 0, 0, time.UTC)
				assert.Equal(t, wd, date.Weekday())
				assert.Equal(t, month, date.Month())
				assert.Equal(t, n-1, (day-1)/7)
			}
		}
	}

	_, ok := NthWeekdayOfMonth(2026, time.January, time.Monday, 5)
	assert.False(t, ok)
	_, ok = NthWeekdayOfMonth(2026, time.January, time.Monday, 0)
	assert.False(t, ok)

	day, ok := NthWeekdayOfMonth(2026, time.January, time.Thursday, 5)
	require.True(t, ok)
	assert.Equal(t, 29, day)
}

func TestStartOfWeek(t *testing.T) {
	loc := shanghaiContext().Location()
	sunday := time.Date(2026, 2, 1, 18, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 1, 26, 0, 0, 0, 0, loc), StartOfWeek(sunday))

	monday := time.Date(2026, 1, 26, 0, 0, 0, 0, loc)
	assert.Equal(t, monday, StartOfWeek(monday))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"3", 3, true},
		{"15", 15, true},
		{"三", 3, true},
		{"两", 2, true},
		{"十", 10, true},
		{"十一", 11, true},
		{"二十", 20, true},
		{"二十三", 23, true},
		{"", 0, false},
		{"三三", 0, false},
		{"十十", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
