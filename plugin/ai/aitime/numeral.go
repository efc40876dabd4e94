package aitime

import (
	"strconv"
	"strings"
)

var chineseDigits = map[rune]int{
	'零': 0,
	'一': 1,
	'二': 2,
	'两': 2,
	'三': 3,
	'四': 4,
	'五': 5,
	'六': 6,
	'七': 7,
	'八': 8,
	'九': 9,
}

// ParseNumber parses Arabic digits or a Chinese numeral below 100
// (e.g. "三", "十", "十五", "二十", "二十三").
func ParseNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	runes := []rune(s)
	tenAt := -1
	for i, r := range runes {
		if r == '十' {
			if tenAt >= 0 {
				return 0, false
			}
			tenAt = i
			continue
		}
		if _, ok := chineseDigits[r]; !ok {
			return 0, false
		}
	}

	if tenAt < 0 {
		if len(runes) != 1 {
			return 0, false
		}
		return chineseDigits[runes[0]], true
	}

	tens, ones := 1, 0
	switch tenAt {
	case 0:
	case 1:
		tens = chineseDigits[runes[0]]
	default:
		return 0, false
	}
	switch len(runes) - tenAt - 1 {
	case 0:
	case 1:
		ones = chineseDigits[runes[tenAt+1]]
	default:
		return 0, false
	}
	return tens*10 + ones, true
}
