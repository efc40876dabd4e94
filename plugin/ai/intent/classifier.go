package intent

import (
	"log/slog"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
)

// Classifier runs an ordered rule list against an utterance.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules []rule
}

// NewClassifier creates a classifier with the built-in rules.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

// Classify extracts the user utterance from messages and returns the result
// of the first matching rule, or Default when none matches.
func (c *Classifier) Classify(messages []Message, tc aitime.TemporalContext) Result {
	u := &utterance{
		text: Utterance(messages),
		tc:   tc,
		now:  tc.LocalNow(),
	}

	for _, r := range c.rules {
		result, ok := r.match(u)
		if !ok {
			continue
		}
		slog.Debug("intent classified by rule",
			"rule", r.name,
			"intent", result.Intent,
			"confidence", result.Confidence)
		return result
	}

	slog.Debug("no intent rule matched, using default", "intent", IntentQueryTodos)
	return Default()
}

var defaultClassifier = NewClassifier()

// Classify runs the built-in classifier.
func Classify(messages []Message, tc aitime.TemporalContext) Result {
	return defaultClassifier.Classify(messages, tc)
}

// ResolveCandidates resolves each time candidate to a UTC ISO string.
// Candidates that cannot be resolved are skipped.
func ResolveCandidates(cands []TimeCandidate, tc aitime.TemporalContext) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		if iso, ok := aitime.ResolveISO(c.String(), tc); ok {
			out = append(out, iso)
		}
	}
	return out
}
