package inference

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Request is one single-shot completion: a fixed task instruction plus a
// batch-specific instruction.
type Request struct {
	System      string
	User        string
	Temperature float32
	Timeout     time.Duration
}

// Completer returns the backend's free-form text answer to req.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Backend is a Completer guarded by a circuit breaker.
type Backend interface {
	Completer
	Name() string
	Ready() bool
	Acquire() bool
}

var (
	ErrRateLimited = errors.New("inference backend rate limited")
	ErrNoToken     = errors.New("inference backend token not configured")
	ErrEmptyOutput = errors.New("inference backend returned no text")
)

// StatusError is a non-2xx answer from a backend.
type StatusError struct {
	Backend string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend=%s status=%d body=%q", e.Backend, e.Status, e.Body)
}

// guard runs fn under b's breaker bookkeeping.
func guard(b *MicroBreaker, fn func() (string, error)) (string, error) {
	out, err := fn()
	if err != nil {
		b.OnFailure()
		return "", err
	}
	b.OnSuccess()
	return out, nil
}
