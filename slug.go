package sigildex

import (
	"strings"
	"unicode"
)

// Slugify creates a filesystem- and URL-safe identifier from a name.
// Converts to lowercase, collapses separators into single hyphens, and
// drops everything that is not a letter or digit. Underscores and dots
// count as separators so that file stems slugify predictably.
func Slugify(name string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '/' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
