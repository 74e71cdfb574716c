package util

import (
	"regexp"
	"strings"
)

const (
	// TurkeyPrefix is the country prefix every canonical phone starts with.
	TurkeyPrefix = "+90"
	localDigits  = 10
)

// TurkeyPrefixes are the leading forms replaced by TurkeyPrefix, in the order
// they are tested. The first match wins.
var TurkeyPrefixes = []string{"+90", "0090", "090", "90", "0"}

var (
	phoneNoise     = regexp.MustCompile(`[\s()-]`)
	canonicalPhone = regexp.MustCompile(`^\+90\d{10}$`)
)

// CanonicalizePhone maps manifest phone text to the +90XXXXXXXXXX form.
// It never fails: unparseable input still comes back +90-prefixed and is
// left for IsValidPhone to reject.
func CanonicalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	// spreadsheet numbers coerced to text come back as "5321234567.0"
	s = strings.TrimSuffix(s, ".0")
	s = phoneNoise.ReplaceAllString(s, "")

	s = TurkeyPrefix + stripTurkeyPrefix(s)

	// keep the last 10 characters of the local part
	local := []rune(strings.TrimPrefix(s, TurkeyPrefix))
	if len(local) > localDigits {
		local = local[len(local)-localDigits:]
	}

	return TurkeyPrefix + string(local)
}

func stripTurkeyPrefix(s string) string {
	for _, p := range TurkeyPrefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}

// IsValidPhone reports whether phone is exactly +90 followed by 10 digits.
func IsValidPhone(phone string) bool {
	return canonicalPhone.MatchString(phone)
}

// IsMobilePhone reports whether a canonical phone is a Turkish mobile
// number (local part starting with 5).
func IsMobilePhone(phone string) bool {
	return IsValidPhone(phone) && phone[len(TurkeyPrefix)] == '5'
}
