package observability

import (
	"strings"
	"unicode"
)

const defaultFieldLimit = 256

// sanitizeString strips control characters and truncates, keeping
// caller-supplied values safe to embed in log fields.
func sanitizeString(value string, limit int) string {
	if limit <= 0 {
		limit = defaultFieldLimit
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	if len(cleaned) > limit {
		cleaned = cleaned[:limit]
	}
	return cleaned
}
