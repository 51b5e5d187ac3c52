package auth

import (
	"strings"
	"unicode"
)

// NormalizePhone maps 998XXXXXXXXX and 9-digit local numbers to +998XXXXXXXXX.
// Other non-empty inputs are returned trimmed.
func NormalizePhone(value string) string {
	var digits strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case d == "":
		return ""
	case strings.HasPrefix(d, "998") && len(d) == 12:
		return "+" + d
	case len(d) == 9:
		return "+998" + d
	}
	return strings.TrimSpace(value)
}
