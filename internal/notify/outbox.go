package notify

import (
	"context"
	"fmt"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/repository"
	"go.uber.org/zap"
)

const DefaultTopic = "contacts.missing"

// OutboxNotifier queues the event in the MySQL outbox; the CDC relay
// publishes it to Kafka and the notifier worker mails it.
type OutboxNotifier struct {
	outbox repository.OutboxRepository
	topic  string
	log    *zap.Logger
}

func NewOutboxNotifier(outbox repository.OutboxRepository, topic string, log *zap.Logger) *OutboxNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboxNotifier{outbox: outbox, topic: topic, log: log}
}

func (n *OutboxNotifier) Notify(ctx context.Context, ev model.MissingContactsEvent) error {
	if len(ev.Names) == 0 {
		return ErrNothingToSend
	}
	if err := n.outbox.InsertMissingContacts(ctx, nil, n.topic, ev); err != nil {
		return fmt.Errorf("outbox insert: %w", err)
	}

	n.log.Info("missing contacts event queued",
		zap.String("run_id", ev.RunID),
		zap.String("topic", n.topic),
		zap.Int("names", len(ev.Names)),
	)
	return nil
}
