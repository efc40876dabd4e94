package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	quotedPattern   = regexp.MustCompile(`“([^”]+)”|"([^"]+)"|「([^」]+)」`)
	tagsPattern     = regexp.MustCompile(`标签[:：]\s*([\p{Han}\w、,，\s]+)`)
	priorityPattern = regexp.MustCompile(`优先级\s*(\d+)`)
	priorityToken   = regexp.MustCompile(`^优先级\d+`)
	tagSeparators   = strings.NewReplacer("，", "、", ",", "、")
)

// quoted returns the first quoted span in text.
func quoted(text string) string {
	m := quotedPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return strings.TrimSpace(g)
		}
	}
	return ""
}

// extractTags returns the 、/,-delimited tags after a "标签:" label,
// dropping tokens that are really a priority.
func extractTags(text string) []string {
	m := tagsPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var tags []string
	for _, token := range strings.Split(tagSeparators.Replace(m[1]), "、") {
		token = strings.TrimSpace(token)
		if token == "" || priorityToken.MatchString(token) {
			continue
		}
		tags = append(tags, token)
	}
	return tags
}

func extractPriority(text string) *int {
	m := priorityPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// clause returns text up to the first clause separator.
func clause(text string) string {
	if i := strings.IndexAny(text, "，,。"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// fallbackTitle returns the first keyword present in text.
func fallbackTitle(text string, keywords ...string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
