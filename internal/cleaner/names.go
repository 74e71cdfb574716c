package cleaner

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CardNameLimit is the longest name a vCard FN field may carry.
const CardNameLimit = 20

// A title must open the string or follow a non-letter. \b is ASCII-only.
var honorifics = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(?:Mr\.|Ms\.|Mrs\.)\s*`)

// SanitizeName removes Mr./Ms./Mrs. titles and collapses whitespace.
func SanitizeName(raw string) string {
	s := honorifics.ReplaceAllString(norm.NFC.String(raw), "${1}")
	return strings.Join(strings.Fields(s), " ")
}

// TruncateForCard shortens name to CardNameLimit characters. Multi-word
// names become "First L" (first word plus the initial of the last one)
// before any hard cut.
func TruncateForCard(name string) string {
	if runeLen(name) <= CardNameLimit {
		return name
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return cut(name, CardNameLimit)
	}

	last := []rune(parts[len(parts)-1])
	return cut(parts[0]+" "+string(last[0]), CardNameLimit)
}

func runeLen(s string) int { return len([]rune(s)) }

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
