package assistant

import "strings"

// ParsePlan extracts the sub-questions of a numbered plan. A line is kept
// when, after trimming, the text before its first period is all ASCII digits
// and the text after it is non-empty. Everything else is dropped.
func ParsePlan(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		prefix, rest, ok := strings.Cut(line, ".")
		if !ok || !isDigits(prefix) {
			continue
		}
		if rest = strings.TrimSpace(rest); rest != "" {
			steps = append(steps, rest)
		}
	}
	return steps
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
