package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewRunID generates a lexically sortable id for a conversion run.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ValidRunID reports whether s parses as a ULID.
func ValidRunID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
