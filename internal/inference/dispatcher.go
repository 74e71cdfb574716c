package inference

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/metrics"
	"go.uber.org/zap"
)

var (
	ErrNoHealthy = errors.New("no healthy inference backends")
	ErrNoAcquire = errors.New("inference backend not acquired")
)

// Dispatcher spreads completions over the configured backends. It makes
// exactly one attempt per call: callers own the fallback.
type Dispatcher struct {
	backends          []Backend
	roundRobinCounter atomic.Uint64
	log               *zap.Logger
	metrics           *metrics.Metrics
}

func NewDispatcher(backends []Backend, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{backends: backends, log: log, metrics: m}
}

func (d *Dispatcher) selectBackend() (Backend, error) {
	healthy := make([]Backend, 0, len(d.backends))
	for _, b := range d.backends {
		if b.Ready() {
			healthy = append(healthy, b)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	x := d.roundRobinCounter.Add(1)
	idx := int((x - 1) % uint64(len(healthy)))

	return healthy[idx], nil
}

// Complete sends req to one healthy backend, bounded by req.Timeout.
func (d *Dispatcher) Complete(ctx context.Context, req Request) (string, error) {
	b, err := d.selectBackend()
	if err != nil {
		return "", err
	}

	if !b.Acquire() {
		return "", ErrNoAcquire
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	started := time.Now()
	out, err := b.Complete(ctx, req)
	d.metrics.ObserveInference(b.Name(), started, err)

	if err != nil {
		d.log.Warn("completion failed",
			zap.String("backend", b.Name()),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return "", err
	}

	d.log.Debug("completion received",
		zap.String("backend", b.Name()),
		zap.Int("chars", len(out)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return out, nil
}
