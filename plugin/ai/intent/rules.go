package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
	"github.com/hrygo/todoassist/plugin/ai/schedule"
)

// Pre-compiled rule patterns.
var (
	reminderDateTimePattern = regexp.MustCompile(`在(\d{4}-\d{2}-\d{2})\s*(\d{1,2}:\d{2})`)
	reminderTitlePattern    = regexp.MustCompile(`提醒我([^，。]+)`)
	candidateEightPattern   = regexp.MustCompile(`(?:^|\D)0?8(?:点|[:：]00)`)
	candidateNinePattern    = regexp.MustCompile(`(?:^|\D)0?9(?:点|[:：]00)`)
	explicitClockPattern    = regexp.MustCompile(`(?:(今天|明天))?\s*(\d{1,2})[：:点](\d{1,2})(?:分)?`)
	todoLabelPattern        = regexp.MustCompile(`待办[:：]\s*([^，,]+)`)
	relativePeriodPattern   = regexp.MustCompile(`(今天|明天)(上午|下午|晚上|傍晚|夜里|夜间|晚间)([^，。\s]*)`)
	deleteTargetPattern     = regexp.MustCompile(`删除\s*([^，。\s“”"「」]+)`)
	monthly25Pattern        = regexp.MustCompile(`每月\s*25`)
)

const reminderVerb = "提醒我"

// periodHours is the fixed period-of-day table used by the relative-day rule.
var periodHours = map[string]int{
	"上午": 9,
	"下午": 15,
	"傍晚": 18,
	"晚上": 20,
	"夜里": 22,
	"夜间": 22,
	"晚间": 20,
}

// pmWords push a stated hour below 12 into the afternoon.
var pmWords = []string{"下午", "傍晚", "晚上", "夜里", "夜间", "晚间", "今晚", "明晚"}

// utterance is the per-call input shared by all rules.
type utterance struct {
	text string
	tc   aitime.TemporalContext
	now  time.Time // tc.Now in the caller's wall clock
}

// at renders local day+offset at hour:minute as a UTC ISO string.
func (u *utterance) at(dayOffset, hour, minute int) string {
	d := u.now.AddDate(0, 0, dayOffset)
	return aitime.FormatISO(u.tc.Wall(d.Year(), d.Month(), d.Day(), hour, minute, 0))
}

type matchFunc func(u *utterance) (Result, bool)

type rule struct {
	name  string
	match matchFunc
}

// defaultRules are evaluated in order; the first match wins.
var defaultRules = []rule{
	{"absolute_reminder", matchAbsoluteReminder},
	{"ambiguous_reminder", matchAmbiguousReminder},
	{"explicit_clock", matchExplicitClock},
	{"add_todo", matchAddTodo},
	{"relative_period", matchRelativePeriod},
	{"this_week_query", matchThisWeekQuery},
	{"mark_complete", matchMarkComplete},
	{"delete_shopping", matchDeleteShopping},
	{"delete_todo", matchDeleteTodo},
	{"weekly_monday_reminder", matchWeeklyMondayReminder},
	{"monthly_25_reminder", matchMonthly25Reminder},
	{"keyword_search", matchKeywordSearch},
	{"schedule_meeting", matchScheduleMeeting},
}

// 提醒我在2025-11-20 15:00 开会，标签：会议、重要，优先级2
func matchAbsoluteReminder(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, reminderVerb) {
		return Result{}, false
	}
	loc := reminderDateTimePattern.FindStringSubmatchIndex(u.text)
	if loc == nil {
		return Result{}, false
	}

	var e Entities
	date := u.text[loc[2]:loc[3]]
	clock := u.text[loc[4]:loc[5]]
	if iso, ok := aitime.ResolveISO(date+" "+clock, u.tc); ok {
		e.Time = iso
	}

	e.Title = clause(u.text[loc[1]:])
	if len([]rune(e.Title)) < 2 && strings.Contains(u.text, "开会") {
		e.Title = "开会"
	}
	e.Tags = extractTags(u.text)
	e.Priority = extractPriority(u.text)

	return Result{Intent: IntentCreateTodo, Entities: e, Confidence: 0.8}, true
}

// 明天早上8点或9点提醒我查看日报
func matchAmbiguousReminder(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "或") || !strings.Contains(u.text, reminderVerb) {
		return Result{}, false
	}

	day := DayToday
	if strings.Contains(u.text, "明天") {
		day = DayTomorrow
	}

	var times []string
	if candidateEightPattern.MatchString(u.text) {
		times = append(times, "08:00")
	}
	if candidateNinePattern.MatchString(u.text) {
		times = append(times, "09:00")
	}
	if len(times) == 0 && containsAny(u.text, "上午", "早上") {
		times = []string{"08:00", "09:00"}
	}

	e := Entities{Title: "查看日报"}
	for _, hm := range times {
		e.TimeCandidates = append(e.TimeCandidates, TimeCandidate{Day: day, Time: hm})
	}
	if m := reminderTitlePattern.FindStringSubmatch(u.text); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			e.Title = title
		}
	}

	return Result{Intent: IntentCreateReminder, Entities: e, Confidence: 0.55}, true
}

// 明天8点30分洗澡 / 今天 14:30 开会
func matchExplicitClock(u *utterance) (Result, bool) {
	loc := explicitClockPattern.FindStringSubmatchIndex(u.text)
	if loc == nil {
		return Result{}, false
	}
	m := submatches(u.text, loc)

	var e Entities
	hour, _ := strconv.Atoi(m[2])
	minute, _ := strconv.Atoi(m[3])
	if hour < 12 && containsAny(u.text, pmWords...) {
		hour += 12
	}
	if hour <= 23 && minute <= 59 {
		// 明天 anywhere sets the day, as with the PM words.
		dayOffset := 0
		if m[1] == "明天" || (m[1] == "" && strings.Contains(u.text, "明天")) {
			dayOffset = 1
		}
		e.Time = u.at(dayOffset, hour, minute)
	}

	e.Title = clause(strings.TrimPrefix(strings.TrimSpace(u.text[loc[1]:]), "的"))
	if e.Title == "" {
		e.Title = fallbackTitle(u.text, "洗澡", "开会")
	}

	return Result{Intent: IntentCreateTodo, Entities: e, Confidence: 0.8}, true
}

// 添加一个待办：整理项目文档，标签：文档
func matchAddTodo(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "添加一个待办") {
		return Result{}, false
	}
	var e Entities
	if m := todoLabelPattern.FindStringSubmatch(u.text); m != nil {
		e.Title = strings.TrimSpace(m[1])
	}
	e.Tags = extractTags(u.text)
	return Result{Intent: IntentCreateTodo, Entities: e, Confidence: 0.75}, true
}

// 明天下午开会
// The hour comes from periodHours alone; a clock after the period stays in
// the title.
func matchRelativePeriod(u *utterance) (Result, bool) {
	m := relativePeriodPattern.FindStringSubmatch(u.text)
	if m == nil {
		return Result{}, false
	}
	dayOffset := 1
	if m[1] == "今天" {
		dayOffset = 0
	}

	e := Entities{
		Title: strings.TrimSpace(m[3]),
		Time:  u.at(dayOffset, periodHours[m[2]], 0),
	}
	if e.Title == "" {
		e.Title = fallbackTitle(u.text, "开会")
	}
	return Result{Intent: IntentCreateTodo, Entities: e, Confidence: 0.8}, true
}

// 本周优先级最高的待办
func matchThisWeekQuery(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "本周") {
		return Result{}, false
	}
	e := Entities{Range: aitime.RangeThisWeek}
	if strings.Contains(u.text, "优先级") {
		e.SortBy = SortByPriority
	}
	return Result{Intent: IntentQueryTodos, Entities: e, Confidence: 0.7}, true
}

// 把今天的“写周报”标记为完成
func matchMarkComplete(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "标记为完成") {
		return Result{}, false
	}
	e := Entities{Status: StatusCompleted, Title: quoted(u.text)}
	if strings.Contains(u.text, "今天") {
		e.Range = aitime.RangeToday
	}
	return Result{Intent: IntentUpdateTodo, Entities: e, Confidence: 0.75}, true
}

// 删除那个关于购物的待办
func matchDeleteShopping(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "删除") || !strings.Contains(u.text, "购物") {
		return Result{}, false
	}
	e := Entities{Tags: []string{"购物"}}
	return Result{Intent: IntentDeleteTodo, Entities: e, Confidence: 0.7}, true
}

// 删除“买牛奶” / 删除买菜待办
func matchDeleteTodo(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "删除") {
		return Result{}, false
	}
	var e Entities
	if title := quoted(u.text); title != "" {
		e.Title = title
	} else if m := deleteTargetPattern.FindStringSubmatch(u.text); m != nil {
		title := strings.TrimSuffix(strings.TrimSuffix(m[1], "待办"), "事项")
		e.Title = strings.TrimSpace(title)
	}
	return Result{Intent: IntentDeleteTodo, Entities: e, Confidence: 0.75}, true
}

// 为“晨会”设置每周一早上9点提醒，渠道：通知
func matchWeeklyMondayReminder(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "每周一") {
		return Result{}, false
	}
	e := Entities{
		Title: quoted(u.text),
		RepeatRule: &schedule.RecurrenceRule{
			Frequency: schedule.FrequencyWeekly,
			ByWeekday: []string{"MO"},
			Time:      "09:00",
		},
	}
	if strings.Contains(u.text, "通知") {
		e.Channel = ChannelNotification
	}
	return Result{Intent: IntentCreateReminder, Entities: e, Confidence: 0.8}, true
}

// 每月25日提醒我“交房租”
func matchMonthly25Reminder(u *utterance) (Result, bool) {
	if !monthly25Pattern.MatchString(u.text) {
		return Result{}, false
	}
	e := Entities{
		Title: quoted(u.text),
		RepeatRule: &schedule.RecurrenceRule{
			Frequency:  schedule.FrequencyMonthly,
			ByMonthDay: []int{25},
			Time:       "08:00",
		},
	}
	return Result{Intent: IntentCreateReminder, Entities: e, Confidence: 0.8}, true
}

// 查找包含“报告”的未开始待办
func matchKeywordSearch(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "查找包含") {
		return Result{}, false
	}
	e := Entities{Keyword: quoted(u.text)}
	if strings.Contains(u.text, "未开始") {
		e.Status = StatusPending
	}
	return Result{Intent: IntentQueryTodos, Entities: e, Confidence: 0.7}, true
}

// 安排一个会议
func matchScheduleMeeting(u *utterance) (Result, bool) {
	if !strings.Contains(u.text, "安排一个会议") {
		return Result{}, false
	}
	return Result{Intent: IntentCreateTodo, Entities: Entities{Title: "会议"}, Confidence: 0.5}, true
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
