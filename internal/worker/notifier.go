package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/kafka"
	"github.com/jmehdipour/contact-gateway/internal/metrics"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/notify"
	"go.uber.org/zap"
)

// Source is the consumer side used by the worker.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// NotifierKafka:
// - fetches missing-contacts events relayed from the outbox,
// - mails each one through the notifier,
// - commits every message (at-least-once; failures are logged and counted).
type NotifierKafka struct {
	// Dependencies
	Consumer Source
	Notifier notify.Notifier
	Log      *zap.Logger
	Metrics  *metrics.Metrics

	// Behavior
	Workers    int           // number of goroutines processing messages
	FetchPause time.Duration // back-off after a fetch error
}

// NewNotifierKafka builds a worker with sane defaults.
func NewNotifierKafka(consumer Source, n notify.Notifier, log *zap.Logger, m *metrics.Metrics) *NotifierKafka {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotifierKafka{
		Consumer:   consumer,
		Notifier:   n,
		Log:        log,
		Metrics:    m,
		Workers:    4,
		FetchPause: 200 * time.Millisecond,
	}
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *NotifierKafka) Run(ctx context.Context) error {
	if w.Workers <= 0 {
		w.Workers = 4
	}
	if w.FetchPause <= 0 {
		w.FetchPause = 200 * time.Millisecond
	}

	msgCh := make(chan kafka.Message, w.Workers*2)

	// Fetcher goroutine
	go func() {
		defer close(msgCh)
		for {
			m, err := w.Consumer.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.Log.Warn("kafka fetch failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(w.FetchPause):
				}
				continue
			}
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	for i := 0; i < w.Workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for m := range msgCh {
				w.processOne(ctx, m)
			}
		}()
	}

	for i := 0; i < w.Workers; i++ {
		<-done
	}
	return nil
}

func (w *NotifierKafka) processOne(ctx context.Context, m kafka.Message) {
	var ev model.MissingContactsEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.RunID == "" {
		w.Log.Warn("dropping malformed event",
			zap.Int64("offset", m.Offset),
			zap.Int("partition", m.Partition),
			zap.Error(err),
		)
		w.commit(ctx, m)
		return
	}

	err := w.Notifier.Notify(ctx, ev)
	w.Metrics.ObserveNotification("smtp", err)
	if err != nil {
		w.Log.Error("notify failed", zap.String("run_id", ev.RunID), zap.Error(err))
	}

	w.commit(ctx, m)
}

func (w *NotifierKafka) commit(ctx context.Context, m kafka.Message) {
	if err := w.Consumer.Commit(ctx, m); err != nil && ctx.Err() == nil {
		w.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}
