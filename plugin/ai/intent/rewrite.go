package intent

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
)

const (
	// maxKeywords bounds Rewrite.Keywords.
	maxKeywords = 5
	// maxKeywordRunes drops tokens longer than a plausible keyword.
	maxKeywordRunes = 10
	// polishConfidence is the fixed confidence of the local rewrite.
	polishConfidence = 0.6
	// defaultPolished is used when the todo carries no text at all.
	defaultPolished = "请按计划执行任务"
	// polishTimeLayout renders the due time in the caller's wall clock.
	polishTimeLayout = "2006-01-02 15:04"
)

// RewriteRequest is the todo to rewrite into formal written style.
type RewriteRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	DueTime     string `json:"dueTime,omitempty"` // RFC 3339
}

// Rewrite is a polished todo text with a few keywords.
type Rewrite struct {
	Polished   string   `json:"polished"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
}

// Rewriter is an upstream rewriter, typically backed by a language model.
// An Interpreter that also implements Rewriter serves both endpoints.
type Rewriter interface {
	RewriteTodo(ctx context.Context, req RewriteRequest) (Rewrite, error)
}

// Polish rewrites a todo without any upstream: "请于<due>，完成<title>".
// The due time is rendered in tc's wall clock; an unparsable one is dropped.
func Polish(req RewriteRequest, tc aitime.TemporalContext) Rewrite {
	title := strings.TrimSpace(req.Title)
	desc := strings.TrimSpace(req.Description)

	subject := title
	if subject == "" {
		subject = desc
	}

	var parts []string
	if due, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DueTime)); err == nil {
		parts = append(parts, "请于"+due.In(tc.Location()).Format(polishTimeLayout))
	}
	if subject != "" {
		parts = append(parts, "完成"+subject)
	}

	polished := strings.Join(parts, "，")
	if polished == "" {
		polished = defaultPolished
	}

	return Rewrite{
		Polished:   polished,
		Keywords:   keywords(title + " " + desc),
		Confidence: polishConfidence,
	}
}

func isKeywordSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', ',', '，', '。', ';', '；':
		return true
	}
	return false
}

// keywords returns up to maxKeywords distinct short tokens in input order.
func keywords(text string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, w := range strings.FieldsFunc(text, isKeywordSeparator) {
		if seen[w] || utf8.RuneCountInString(w) > maxKeywordRunes {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
