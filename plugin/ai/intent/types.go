// Package intent classifies free-form todo utterances into a structured
// intent with entities, using an ordered list of pattern rules.
package intent

import (
	"strings"

	"github.com/hrygo/todoassist/plugin/ai/schedule"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged conversational turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Intent is the classified user goal.
type Intent string

const (
	IntentCreateTodo     Intent = "createTodo"
	IntentQueryTodos     Intent = "queryTodos"
	IntentUpdateTodo     Intent = "updateTodo"
	IntentDeleteTodo     Intent = "deleteTodo"
	IntentCreateReminder Intent = "createReminder"
)

// Valid reports whether i belongs to the closed intent set.
func (i Intent) Valid() bool {
	switch i {
	case IntentCreateTodo, IntentQueryTodos, IntentUpdateTodo, IntentDeleteTodo, IntentCreateReminder:
		return true
	}
	return false
}

// Entity values shared by several rules.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"

	SortByPriority = "priority"

	ChannelNotification = "notification"

	DayToday    = "today"
	DayTomorrow = "tomorrow"
)

// Entities are the values extracted in support of an intent.
// Absent values are omitted from JSON.
type Entities struct {
	Title          string                   `json:"title,omitempty"`
	Time           string                   `json:"time,omitempty"` // UTC ISO-8601
	Tags           []string                 `json:"tags,omitempty"`
	Priority       *int                     `json:"priority,omitempty"`
	Status         string                   `json:"status,omitempty"`
	Range          string                   `json:"range,omitempty"`
	SortBy         string                   `json:"sortBy,omitempty"`
	Keyword        string                   `json:"keyword,omitempty"`
	RepeatRule     *schedule.RecurrenceRule `json:"repeatRule,omitempty"`
	Channel        string                   `json:"channel,omitempty"`
	TimeCandidates []TimeCandidate          `json:"timeCandidates,omitempty"`
}

// TimeCandidate is one of several times an ambiguous utterance may mean.
type TimeCandidate struct {
	Day  string `json:"day"`  // unresolved day phrase, e.g. "tomorrow"
	Time string `json:"time"` // HH:MM
}

// String renders the candidate as a resolvable phrase, e.g. "tomorrow 08:00".
func (c TimeCandidate) String() string {
	return strings.TrimSpace(c.Day + " " + c.Time)
}

// Result is the outcome of classification.
type Result struct {
	Intent     Intent   `json:"intent"`
	Entities   Entities `json:"entities"`
	Confidence float64  `json:"confidence"`
}

// DefaultConfidence is reported when no rule matches.
const DefaultConfidence = 0.6

// Default returns the low-confidence fallback result.
func Default() Result {
	return Result{Intent: IntentQueryTodos, Confidence: DefaultConfidence}
}

// Utterance concatenates user-role content in order, separated by spaces.
func Utterance(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleUser {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, " ")
}
