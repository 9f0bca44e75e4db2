package generator

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyResponse is returned when a model answers with no usable text.
var ErrEmptyResponse = errors.New("model returned an empty description")

var labelPrefix = regexp.MustCompile(`(?i)^\s*(?:\*\*)?(?:revised |new |image )?prompt(?:\*\*)?\s*:(?:\*\*)?\s*`)

// PostProcess trims a model answer down to the description it carries: surrounding
// whitespace, a leading "Prompt:" label and wrapping quotes are removed.
func PostProcess(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = labelPrefix.ReplaceAllString(text, "")
	text = trimQuotes(strings.TrimSpace(text))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

var quotePairs = [][2]string{{`"`, `"`}, {"'", "'"}, {"\u201c", "\u201d"}}

// trimQuotes removes one pair of wrapping quotes. Text carrying further quotes of the same
// kind is returned unchanged, since its first and last quotes need not belong together.
func trimQuotes(s string) string {
	for _, q := range quotePairs {
		if len(s) < len(q[0])+len(q[1]) || !strings.HasPrefix(s, q[0]) || !strings.HasSuffix(s, q[1]) {
			continue
		}
		inner := s[len(q[0]) : len(s)-len(q[1])]
		if strings.Contains(inner, q[0]) || strings.Contains(inner, q[1]) {
			return s
		}
		return strings.TrimSpace(inner)
	}
	return s
}
