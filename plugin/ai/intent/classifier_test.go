package intent

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
	"github.com/hrygo/todoassist/plugin/ai/schedule"
)

// Tuesday 2026-01-27 10:00 in UTC+8.
var refNow = time.Date(2026, 1, 27, 2, 0, 0, 0, time.UTC)

func userSays(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: "你是待办助手"},
		{Role: RoleUser, Content: text},
	}
}

func utcContext() aitime.TemporalContext {
	return aitime.NewTemporalContext(refNow, 0, nil)
}

func shanghaiContext() aitime.TemporalContext {
	return aitime.NewTemporalContext(refNow, 480, nil)
}

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		tc         aitime.TemporalContext
		intent     Intent
		confidence float64
		check      func(t *testing.T, e Entities)
	}{
		{
			name:       "absolute reminder with tags and priority",
			input:      "提醒我在2025-11-20 15:00 开会，标签：会议、重要，优先级2",
			tc:         utcContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "开会", e.Title)
				assert.Equal(t, []string{"会议", "重要"}, e.Tags)
				require.NotNil(t, e.Priority)
				assert.Equal(t, 2, *e.Priority)
				assert.Equal(t, "2025-11-20T15:00:00Z", e.Time)
			},
		},
		{
			name:       "absolute reminder honors offset",
			input:      "提醒我在2025-11-20 15:00 开会",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "2025-11-20T07:00:00Z", e.Time)
			},
		},
		{
			name:       "ambiguous reminder with literal times",
			input:      "明天早上8点或9点提醒我查看日报",
			tc:         shanghaiContext(),
			intent:     IntentCreateReminder,
			confidence: 0.55,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "查看日报", e.Title)
				assert.Equal(t, []TimeCandidate{
					{Day: DayTomorrow, Time: "08:00"},
					{Day: DayTomorrow, Time: "09:00"},
				}, e.TimeCandidates)
			},
		},
		{
			name:       "ambiguous reminder with period only",
			input:      "上午或者中午提醒我",
			tc:         shanghaiContext(),
			intent:     IntentCreateReminder,
			confidence: 0.55,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "查看日报", e.Title)
				assert.Equal(t, []TimeCandidate{
					{Day: DayToday, Time: "08:00"},
					{Day: DayToday, Time: "09:00"},
				}, e.TimeCandidates)
			},
		},
		{
			name:       "explicit clock",
			input:      "明天8点30分洗澡",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "洗澡", e.Title)
				assert.Equal(t, "2026-01-28T00:30:00Z", e.Time)
			},
		},
		{
			name:       "explicit clock with afternoon and particle",
			input:      "今天下午3:30的会议",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "会议", e.Title)
				assert.Equal(t, "2026-01-27T07:30:00Z", e.Time)
			},
		},
		{
			name:       "explicit clock with tomorrow before the period word",
			input:      "明天下午3:30开会",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "开会", e.Title)
				assert.Equal(t, "2026-01-28T07:30:00Z", e.Time)
			},
		},
		{
			name:       "explicit clock title fallback",
			input:      "记得洗澡 今天21:00",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "洗澡", e.Title)
				assert.Equal(t, "2026-01-27T13:00:00Z", e.Time)
			},
		},
		{
			name:       "add todo with label",
			input:      "添加一个待办：整理项目文档，标签：文档",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.75,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "整理项目文档", e.Title)
				assert.Equal(t, []string{"文档"}, e.Tags)
			},
		},
		{
			name:       "relative day and period",
			input:      "明天下午开会",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "开会", e.Title)
				assert.Equal(t, "2026-01-28T07:00:00Z", e.Time)
			},
		},
		{
			name:       "relative day and period keeps the clock in the title",
			input:      "今天晚上八点半看电影",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "八点半看电影", e.Title)
				assert.Equal(t, "2026-01-27T12:00:00Z", e.Time)
			},
		},
		{
			name:       "morning period uses the table hour",
			input:      "明天上午10点开会",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "10点开会", e.Title)
				assert.Equal(t, "2026-01-28T01:00:00Z", e.Time)
			},
		},
		{
			name:       "night period is 22:00",
			input:      "明天夜里2点起床",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "2点起床", e.Title)
				assert.Equal(t, "2026-01-28T14:00:00Z", e.Time)
			},
		},
		{
			name:       "evening period is 20:00",
			input:      "明天晚上十二点睡觉",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "十二点睡觉", e.Title)
				assert.Equal(t, "2026-01-28T12:00:00Z", e.Time)
			},
		},
		{
			name:       "relative day dusk table",
			input:      "明天傍晚跑步",
			tc:         utcContext(),
			intent:     IntentCreateTodo,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "跑步", e.Title)
				assert.Equal(t, "2026-01-28T18:00:00Z", e.Time)
			},
		},
		{
			name:       "this week query",
			input:      "本周优先级最高的待办有哪些",
			tc:         shanghaiContext(),
			intent:     IntentQueryTodos,
			confidence: 0.7,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, aitime.RangeThisWeek, e.Range)
				assert.Equal(t, SortByPriority, e.SortBy)
			},
		},
		{
			name:       "mark complete",
			input:      "把今天的“写周报”标记为完成",
			tc:         shanghaiContext(),
			intent:     IntentUpdateTodo,
			confidence: 0.75,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, StatusCompleted, e.Status)
				assert.Equal(t, aitime.RangeToday, e.Range)
				assert.Equal(t, "写周报", e.Title)
			},
		},
		{
			name:       "delete shopping",
			input:      "删除那个关于购物的待办",
			tc:         shanghaiContext(),
			intent:     IntentDeleteTodo,
			confidence: 0.7,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, []string{"购物"}, e.Tags)
			},
		},
		{
			name:       "delete quoted",
			input:      "删除“买牛奶”",
			tc:         shanghaiContext(),
			intent:     IntentDeleteTodo,
			confidence: 0.75,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "买牛奶", e.Title)
			},
		},
		{
			name:       "delete with suffix",
			input:      "删除买菜待办",
			tc:         shanghaiContext(),
			intent:     IntentDeleteTodo,
			confidence: 0.75,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "买菜", e.Title)
			},
		},
		{
			name:       "weekly monday reminder",
			input:      "为“晨会”设置每周一早上9点提醒，渠道：通知",
			tc:         shanghaiContext(),
			intent:     IntentCreateReminder,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "晨会", e.Title)
				assert.Equal(t, ChannelNotification, e.Channel)
				assert.Equal(t, &schedule.RecurrenceRule{
					Frequency: schedule.FrequencyWeekly,
					ByWeekday: []string{"MO"},
					Time:      "09:00",
				}, e.RepeatRule)
			},
		},
		{
			name:       "weekly monday reminder without channel",
			input:      "每周一提醒我“交周报”",
			tc:         shanghaiContext(),
			intent:     IntentCreateReminder,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "交周报", e.Title)
				assert.Empty(t, e.Channel)
			},
		},
		{
			name:       "monthly reminder",
			input:      "每月25号提醒我“交房租”",
			tc:         shanghaiContext(),
			intent:     IntentCreateReminder,
			confidence: 0.8,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "交房租", e.Title)
				assert.Equal(t, &schedule.RecurrenceRule{
					Frequency:  schedule.FrequencyMonthly,
					ByMonthDay: []int{25},
					Time:       "08:00",
				}, e.RepeatRule)
			},
		},
		{
			name:       "keyword search",
			input:      "查找包含“报告”的未开始待办",
			tc:         shanghaiContext(),
			intent:     IntentQueryTodos,
			confidence: 0.7,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, "报告", e.Keyword)
				assert.Equal(t, StatusPending, e.Status)
			},
		},
		{
			name:       "schedule meeting",
			input:      "安排一个会议",
			tc:         shanghaiContext(),
			intent:     IntentCreateTodo,
			confidence: 0.5,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, Entities{Title: "会议"}, e)
			},
		},
		{
			name:       "no match",
			input:      "你好",
			tc:         shanghaiContext(),
			intent:     IntentQueryTodos,
			confidence: DefaultConfidence,
			check: func(t *testing.T, e Entities) {
				assert.Equal(t, Entities{}, e)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(userSays(tt.input), tt.tc)
			assert.Equal(t, tt.intent, got.Intent)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			tt.check(t, got.Entities)
		})
	}
}

func TestClassify_AbsoluteReminderBeatsRelativePeriod(t *testing.T) {
	got := Classify(userSays("提醒我在2025-11-20 15:00 明天下午开会"), utcContext())

	assert.Equal(t, IntentCreateTodo, got.Intent)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)
	assert.Equal(t, "2025-11-20T15:00:00Z", got.Entities.Time)
	assert.Equal(t, "明天下午开会", got.Entities.Title)
}

// Without 提醒我 the absolute date is not a rule 1 match; the explicit clock
// rule takes the time of day and the date is dropped.
func TestClassify_AbsoluteDateWithoutReminderVerb(t *testing.T) {
	got := Classify(userSays("在2025-11-20 15:00 开会"), shanghaiContext())
	assert.Equal(t, IntentCreateTodo, got.Intent)
	assert.Equal(t, "开会", got.Entities.Title)
	assert.Equal(t, "2026-01-27T07:00:00Z", got.Entities.Time)
}

func TestClassify_ShortTitleFallsBackToMeeting(t *testing.T) {
	got := Classify(userSays("提醒我在2025-11-20 15:00 开，开会"), utcContext())
	assert.Equal(t, "开会", got.Entities.Title)
}

func TestClassify_OnlyUserMessages(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "删除所有数据"},
		{Role: RoleAssistant, Content: "安排一个会议"},
		{Role: RoleUser, Content: "本周"},
		{Role: RoleUser, Content: "有哪些待办"},
	}
	assert.Equal(t, "本周 有哪些待办", Utterance(messages))

	got := Classify(messages, shanghaiContext())
	assert.Equal(t, IntentQueryTodos, got.Intent)
	assert.Equal(t, aitime.RangeThisWeek, got.Entities.Range)
}

func TestClassify_EmptyInput(t *testing.T) {
	assert.Equal(t, Default(), Classify(nil, shanghaiContext()))
}

func TestClassifier_Rules(t *testing.T) {
	rules := NewClassifier().Rules()
	require.Len(t, rules, 13)
	assert.Equal(t, "absolute_reminder", rules[0])
	assert.Equal(t, "relative_period", rules[4])
	assert.Equal(t, "schedule_meeting", rules[12])
}

func TestResolveCandidates(t *testing.T) {
	cands := []TimeCandidate{
		{Day: DayTomorrow, Time: "08:00"},
		{Day: DayTomorrow, Time: "09:00"},
		{Day: "someday", Time: ""},
	}
	got := ResolveCandidates(cands, shanghaiContext())
	assert.Equal(t, []string{"2026-01-28T00:00:00Z", "2026-01-28T01:00:00Z"}, got)
}

func TestResult_JSONOmitsAbsentEntities(t *testing.T) {
	data, err := json.Marshal(Classify(userSays("安排一个会议"), shanghaiContext()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"createTodo","entities":{"title":"会议"},"confidence":0.5}`, string(data))
}

func TestIntent_Valid(t *testing.T) {
	assert.True(t, IntentCreateReminder.Valid())
	assert.False(t, Intent("archiveTodo").Valid())
}
