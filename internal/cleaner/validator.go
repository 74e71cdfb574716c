package cleaner

import (
	"slices"
	"strings"
	"unicode"

	"github.com/jmehdipour/contact-gateway/internal/util"
)

// NoiseKeywords mark manifest rows that describe logistics rather than a
// traveler. Matching is a case-insensitive substring test.
var NoiseKeywords = []string{
	"hotel",
	"flight",
	"brickell",
	"address",
	"conference",
	"airport",
	"vouchers",
	"group",
	"tour leader",
	"meeting room",
	"storage",
	"hilton",
	"sheraton",
	"doubletree",
	"marriott",
	"treasure island",
}

// NoiseWords are matched against whole words only, since as substrings they
// would hit ordinary names.
var NoiseWords = []string{"inn", "tba", "resort", "suites", "lobby", "guide", "guides"}

// IsValidName requires at least two words and no noise keyword.
func IsValidName(name string) bool {
	lower := strings.ToLower(name)
	words := strings.Fields(lower)
	if len(words) < 2 {
		return false
	}
	return !containsNoise(lower)
}

func containsNoise(lower string) bool {
	for _, kw := range NoiseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, w := range strings.FieldsFunc(lower, notWordRune) {
		if slices.Contains(NoiseWords, w) {
			return true
		}
	}
	return false
}

func notWordRune(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }

// IsValidContact accepts a pair only when the phone is already canonical
// and the name looks like a single person.
func IsValidContact(name, phone string) bool {
	return util.IsValidPhone(phone) && IsValidName(name)
}
