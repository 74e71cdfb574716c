package cleaner

import (
	"errors"
	"fmt"
)

// Upstream failure reasons, also used as metric labels.
const (
	ReasonBackend   = "backend"
	ReasonMalformed = "malformed"
	ReasonEmpty     = "empty"
)

var (
	ErrMalformedResponse = errors.New("no JSON array in completion")
	ErrNoValidContacts   = errors.New("no valid contacts in completion")
)

// UpstreamError means the bulk AI pass could not produce a usable result.
// The pipeline absorbs it by falling back to the rule-based cleaner.
type UpstreamError struct {
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("bulk clean (%s): %v", e.Reason, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(reason string, err error) *UpstreamError {
	return &UpstreamError{Reason: reason, Err: err}
}
