package seed

import (
	"strings"
	"unicode"
)

const maxSlugBase = 180

// Slugify lowercases s and joins its letters and digits with single hyphens.
// Runes without a lowercase form are dropped.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	n := 0
	for _, r := range strings.ToLower(s) {
		if n >= maxSlugBase {
			break
		}
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
				n++
			}
			pendingHyphen = false
			b.WriteRune(r)
			n++
		case r == '_' || r == '-' || unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			pendingHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
