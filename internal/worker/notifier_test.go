package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/kafka"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSource struct {
	in chan kafka.Message

	mu        sync.Mutex
	committed []int64
}

func (s *chanSource) Fetch(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-s.in:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (s *chanSource) Commit(_ context.Context, m kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, m.Offset)
	return nil
}

func (s *chanSource) commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed)
}

type recordingNotifier struct {
	mu   sync.Mutex
	got  []model.MissingContactsEvent
	fail bool
}

func (n *recordingNotifier) Notify(_ context.Context, ev model.MissingContactsEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, ev)
	if n.fail {
		return errors.New("smtp down")
	}
	return nil
}

func (n *recordingNotifier) events() []model.MissingContactsEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.MissingContactsEvent(nil), n.got...)
}

func TestNotifierKafka_Run(t *testing.T) {
	src := &chanSource{in: make(chan kafka.Message, 3)}
	src.in <- kafka.Message{Offset: 1, Value: []byte(`{"run_id":"r1","names":["Ayse Yilmaz"]}`)}
	src.in <- kafka.Message{Offset: 2, Value: []byte(`not json`)}
	src.in <- kafka.Message{Offset: 3, Value: []byte(`{"names":["No Run"]}`)}

	n := &recordingNotifier{}
	w := NewNotifierKafka(src, n, nil, nil)
	w.Workers = 2

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return src.commits() == 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []model.MissingContactsEvent{{RunID: "r1", Names: []string{"Ayse Yilmaz"}}}, n.events())
}

func TestNotifierKafka_CommitsOnNotifyFailure(t *testing.T) {
	src := &chanSource{in: make(chan kafka.Message, 1)}
	src.in <- kafka.Message{Offset: 7, Value: []byte(`{"run_id":"r7","names":["Can Ozturk"]}`)}

	n := &recordingNotifier{fail: true}
	w := NewNotifierKafka(src, n, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return src.commits() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, n.events(), 1)
}
