package aitime

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Patterns for phrase resolution.
var (
	isoPrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)

	absoluteDatePattern = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[ T]*(\d{1,2})[:：](\d{2})(?:[:：](\d{2}))?)?`)
	chineseDatePattern  = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})[日号]`)

	// Longer month keywords come first; RE2 alternation is leftmost-first.
	nthWeekdayPattern = regexp.MustCompile(`(下下个月|下下月|下个月|下月|本月|这个月|这月)的?第([1-5一二三四五])个?(?:周|星期|礼拜)([一二三四五六日天])`)

	weekRelativePattern = regexp.MustCompile(`(本周|这周|本星期|这星期|这个星期|下周|下星期|下个星期)的?(周|星期|礼拜)?([一二三四五六日天末])`)
	bareWeekdayPattern  = regexp.MustCompile(`(周|星期|礼拜)([一二三四五六日天末])`)

	colonClockPattern   = regexp.MustCompile(`(\d{1,2})[:：](\d{2})(?:[:：](\d{2}))?`)
	pointClockPattern   = regexp.MustCompile(`(\d{1,2})\s*[点时](?:\s*(\d{1,2})\s*分?|(半))?`)
	chineseClockPattern = regexp.MustCompile(`([零一二两三四五六七八九十]{1,3})点(?:([零一二三四五六七八九十]{1,3}|\d{1,2})分|(半))?`)

	advancePattern = regexp.MustCompile(`提前\s*(\d+|[一二两三四五六七八九十]+|半)\s*个?\s*(小时|钟头|分钟|分)`)
)

// weekdayOffsets maps a weekday character to its offset from Monday.
// 末 (weekend) resolves to Saturday.
var weekdayOffsets = map[string]int{
	"一": 0,
	"二": 1,
	"三": 2,
	"四": 3,
	"五": 4,
	"六": 5,
	"末": 5,
	"日": 6,
	"天": 6,
}

var monthOffsets = map[string]int{
	"本月":   0,
	"这个月":  0,
	"这月":   0,
	"下个月":  1,
	"下月":   1,
	"下下个月": 2,
	"下下月":  2,
}

type keyword struct {
	text  string
	value int
}

// relDayKeywords maps relative day keywords to day offsets.
var relDayKeywords = []keyword{
	{"大后天", 3},
	{"后天", 2},
	{"明天", 1},
	{"明日", 1},
	{"明早", 1},
	{"明晚", 1},
	{"今天", 0},
	{"今日", 0},
	{"今早", 0},
	{"今晚", 0},
	{"day after tomorrow", 2},
	{"tomorrow", 1},
	{"today", 0},
	{"tonight", 0},
}

type periodKeyword struct {
	text   string
	period string
}

// periodKeywords maps period-of-day words to TimeDefaults keys.
var periodKeywords = []periodKeyword{
	{"上午", PeriodMorning},
	{"早上", PeriodMorning},
	{"早晨", PeriodMorning},
	{"清晨", PeriodMorning},
	{"今早", PeriodMorning},
	{"明早", PeriodMorning},
	{"中午", PeriodNoon},
	{"下午", PeriodAfternoon},
	{"傍晚", PeriodEvening},
	{"晚上", PeriodEvening},
	{"晚间", PeriodEvening},
	{"夜里", PeriodEvening},
	{"夜间", PeriodEvening},
	{"今晚", PeriodEvening},
	{"明晚", PeriodEvening},
	{"tonight", PeriodEvening},
}

type outcome int

const (
	notMatched outcome = iota
	resolved
	failed
)

// phrase holds the pre-scanned parts of an expression.
type phrase struct {
	text    string // input with the advance modifier removed
	lower   string
	advance time.Duration
	period  string
	tc      TemporalContext
	now     time.Time // tc.Now in the caller's zone
}

type strategy struct {
	name string
	run  func(p *phrase) (time.Time, outcome)
}

// strategies run in order; the first one that matches decides the result.
var strategies = []strategy{
	{"absolute_date", (*phrase).absoluteDate},
	{"nth_weekday_of_month", (*phrase).nthWeekdayOfMonth},
	{"week_relative", (*phrase).weekRelative},
	{"relative_day", (*phrase).relativeDay},
	{"bare_clock", (*phrase).bareClock},
}

// Resolve converts a date/time expression into an absolute instant.
// The boolean is false when the phrase carries no usable day or time signal.
func Resolve(input string, tc TemporalContext) (time.Time, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, false
	}

	if isoPrefixPattern.MatchString(input) {
		if t, ok := parseISO(input, tc.Location()); ok {
			return t, true
		}
	}

	p := newPhrase(input, tc)
	for _, s := range strategies {
		t, out := s.run(p)
		switch out {
		case resolved:
			t = t.Add(-p.advance)
			slog.Debug("time phrase resolved",
				"phrase", input,
				"strategy", s.name,
				"result", FormatISO(t))
			return t, true
		case failed:
			slog.Debug("time phrase unresolvable",
				"phrase", input,
				"strategy", s.name)
			return time.Time{}, false
		}
	}
	return time.Time{}, false
}

// ResolveISO is Resolve rendered in the wire format.
func ResolveISO(input string, tc TemporalContext) (string, bool) {
	t, ok := Resolve(input, tc)
	if !ok {
		return "", false
	}
	return FormatISO(t), true
}

func parseISO(input string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, input); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func newPhrase(input string, tc TemporalContext) *phrase {
	p := &phrase{tc: tc, now: tc.LocalNow()}

	text := input
	if loc := advancePattern.FindStringSubmatchIndex(text); loc != nil {
		amount := text[loc[2]:loc[3]]
		unit := text[loc[4]:loc[5]]
		p.advance = advanceDuration(amount, unit)
		text = text[:loc[0]] + " " + text[loc[1]:]
	}
	p.text = text
	p.lower = strings.ToLower(text)
	p.period = detectPeriod(p.lower)
	return p
}

func advanceDuration(amount, unit string) time.Duration {
	isHour := unit == "小时" || unit == "钟头"
	if amount == "半" {
		if isHour {
			return 30 * time.Minute
		}
		return 30 * time.Second
	}
	n, ok := ParseNumber(amount)
	if !ok {
		return 0
	}
	if isHour {
		return time.Duration(n) * time.Hour
	}
	return time.Duration(n) * time.Minute
}

// detectPeriod returns the period of the earliest period keyword in text.
func detectPeriod(text string) string {
	best, bestIdx, bestLen := "", -1, 0
	for _, kw := range periodKeywords {
		idx := strings.Index(text, kw.text)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx || (idx == bestIdx && len(kw.text) > bestLen) {
			best, bestIdx, bestLen = kw.period, idx, len(kw.text)
		}
	}
	return best
}

// relativeDayOffset returns the day offset of the earliest relative-day keyword.
func relativeDayOffset(text string) (int, bool) {
	offset, bestIdx, bestLen := 0, -1, 0
	for _, kw := range relDayKeywords {
		idx := strings.Index(text, kw.text)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx || (idx == bestIdx && len(kw.text) > bestLen) {
			offset, bestIdx, bestLen = kw.value, idx, len(kw.text)
		}
	}
	return offset, bestIdx >= 0
}

// clock finds an explicit clock time in text.
func findClock(text string) (hour, minute, second int, found bool) {
	if m := colonClockPattern.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		s := 0
		if m[3] != "" {
			s, _ = strconv.Atoi(m[3])
		}
		if validClock(h, mi, s) {
			return h, mi, s, true
		}
	}
	if m := pointClockPattern.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi := 0
		if m[2] != "" {
			mi, _ = strconv.Atoi(m[2])
		} else if m[3] != "" {
			mi = 30
		}
		if validClock(h, mi, 0) {
			return h, mi, 0, true
		}
	}
	if m := chineseClockPattern.FindStringSubmatch(text); m != nil {
		h, ok := ParseNumber(m[1])
		if !ok {
			return 0, 0, 0, false
		}
		mi := 0
		if m[2] != "" {
			mi, _ = ParseNumber(m[2])
		} else if m[3] != "" {
			mi = 30
		}
		if validClock(h, mi, 0) {
			return h, mi, 0, true
		}
	}
	return 0, 0, 0, false
}

func validClock(h, m, s int) bool {
	return h >= 0 && h <= 23 && m >= 0 && m <= 59 && s >= 0 && s <= 59
}

// timeOfDay picks the clock for a resolved day: explicit clock, then the
// period default, then 09:00:00. Afternoon and evening push hours below 12
// into the PM range.
func (p *phrase) timeOfDay(text string) (hour, minute, second int) {
	h, m, s, found := findClock(text)
	switch {
	case found:
		hour, minute, second = h, m, s
	case p.period != "":
		hour, minute, second = p.tc.defaults().Clock(p.period)
	default:
		hour, minute, second = 9, 0, 0
	}
	return coerceHour(hour, p.period), minute, second
}

func coerceHour(hour int, period string) int {
	if (period == PeriodAfternoon || period == PeriodEvening) && hour < 12 {
		return hour + 12
	}
	return hour
}

func (p *phrase) at(year int, month time.Month, day int, clockText string) time.Time {
	h, m, s := p.timeOfDay(clockText)
	return p.tc.Wall(year, month, day, h, m, s)
}

func (p *phrase) absoluteDate() (time.Time, outcome) {
	var (
		loc []int
		m   []string
	)
	if loc = absoluteDatePattern.FindStringSubmatchIndex(p.text); loc != nil {
		m = submatches(p.text, loc)
	} else if loc = chineseDatePattern.FindStringSubmatchIndex(p.text); loc != nil {
		m = submatches(p.text, loc)
	} else {
		return time.Time{}, notMatched
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if !validDate(year, month, day) {
		return time.Time{}, failed
	}

	if len(m) > 4 && m[4] != "" {
		h, _ := strconv.Atoi(m[4])
		mi, _ := strconv.Atoi(m[5])
		s := 0
		if m[6] != "" {
			s, _ = strconv.Atoi(m[6])
		}
		if !validClock(h, mi, s) {
			return time.Time{}, failed
		}
		h = coerceHour(h, p.period)
		return p.tc.Wall(year, time.Month(month), day, h, mi, s), resolved
	}

	rest := p.text[:loc[0]] + " " + p.text[loc[1]:]
	return p.at(year, time.Month(month), day, rest), resolved
}

func (p *phrase) nthWeekdayOfMonth() (time.Time, outcome) {
	loc := nthWeekdayPattern.FindStringSubmatchIndex(p.text)
	if loc == nil {
		return time.Time{}, notMatched
	}
	m := submatches(p.text, loc)
	n, ok := ParseNumber(m[2])
	if !ok || n < 1 {
		return time.Time{}, failed
	}

	first := time.Date(p.now.Year(), p.now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, monthOffsets[m[1]], 0)
	day, ok := NthWeekdayOfMonth(first.Year(), first.Month(), mondayWeekday(weekdayOffsets[m[3]]), n)
	if !ok {
		return time.Time{}, failed
	}

	rest := p.text[:loc[0]] + " " + p.text[loc[1]:]
	return p.at(first.Year(), first.Month(), day, rest), resolved
}

// NthWeekdayOfMonth returns the day of month of the nth occurrence of
// weekday. It reports false when that occurrence falls outside the month.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) (int, bool) {
	if n < 1 {
		return 0, false
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstDay := 1 + (int(weekday)-int(first.Weekday())+7)%7
	target := first.AddDate(0, 0, firstDay-1+7*(n-1))
	if target.Month() != month {
		return 0, false
	}
	return target.Day(), true
}

func (p *phrase) weekRelative() (time.Time, outcome) {
	weeks := 0
	var (
		loc []int
		day string
	)
	if loc = weekRelativePattern.FindStringSubmatchIndex(p.text); loc != nil && weekdayMarked(submatches(p.text, loc)[1:]) {
		m := submatches(p.text, loc)
		if strings.HasPrefix(m[1], "下") {
			weeks = 1
		}
		day = m[3]
	} else {
		loc = findBareWeekday(p.text)
		if loc == nil {
			return time.Time{}, notMatched
		}
		day = p.text[loc[4]:loc[5]]
	}

	monday := StartOfWeek(p.now)
	target := monday.AddDate(0, 0, 7*weeks+weekdayOffsets[day])
	rest := p.text[:loc[0]] + " " + p.text[loc[1]:]
	return p.at(target.Year(), target.Month(), target.Day(), rest), resolved
}

// weekdayMarked reports whether [prefix, marker, day] names a weekday.
// 天 only counts after 星期/礼拜, so 本周天气 carries no day.
func weekdayMarked(m []string) bool {
	prefix, marker, day := m[0], m[1], m[2]
	if day != "天" {
		return true
	}
	if marker != "" {
		return marker != "周"
	}
	return strings.HasSuffix(prefix, "星期")
}

// countPrefixes precede a 周 that counts weeks (一周一次, 每两周) instead of
// naming a weekday.
const countPrefixes = "每几零一二两三四五六七八九十0123456789"

// findBareWeekday locates 周X that names a weekday: not a recurrence or week
// count, and not the tail of a week-relative phrase already rejected.
func findBareWeekday(text string) []int {
	for _, loc := range bareWeekdayPattern.FindAllStringSubmatchIndex(text, -1) {
		before := text[:loc[0]]
		if r, _ := utf8.DecodeLastRuneInString(before); r != utf8.RuneError && strings.ContainsRune(countPrefixes, r) {
			continue
		}
		marker, day := text[loc[2]:loc[3]], text[loc[4]:loc[5]]
		if day == "天" && marker == "周" {
			continue
		}
		return loc
	}
	return nil
}

func (p *phrase) relativeDay() (time.Time, outcome) {
	offset, ok := relativeDayOffset(p.lower)
	if !ok {
		return time.Time{}, notMatched
	}
	day := p.now.AddDate(0, 0, offset)
	return p.at(day.Year(), day.Month(), day.Day(), p.text), resolved
}

func (p *phrase) bareClock() (time.Time, outcome) {
	if _, _, _, found := findClock(p.text); !found && p.period == "" {
		return time.Time{}, notMatched
	}
	return p.at(p.now.Year(), p.now.Month(), p.now.Day(), p.text), resolved
}

// StartOfWeek returns Monday 00:00 of the week containing t, in t's zone.
func StartOfWeek(t time.Time) time.Time {
	diff := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -diff)
}

func mondayWeekday(offset int) time.Weekday {
	return time.Weekday((offset + 1) % 7)
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
