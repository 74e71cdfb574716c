package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

const AggregateRun = "run"

// OutboxRepository defines persistence methods for the outbox table.
type OutboxRepository interface {
	// Insert writes a single outbox event. If tx is nil, it will open/commit
	// an internal transaction; otherwise it uses the given tx.
	Insert(ctx context.Context, tx *sqlx.Tx, ev model.OutboxEvent) error
	// InsertMissingContacts serializes ev and queues it on topic.
	InsertMissingContacts(ctx context.Context, tx *sqlx.Tx, topic string, ev model.MissingContactsEvent) error
}

// OutboxRepositoryImpl is a sqlx-backed implementation.
type OutboxRepositoryImpl struct {
	db *sqlx.DB
}

// NewOutboxRepository constructs an OutboxRepositoryImpl.
func NewOutboxRepository(db *sqlx.DB) *OutboxRepositoryImpl {
	return &OutboxRepositoryImpl{db: db}
}

// Insert adds an event row to outbox. The CDC relay picks it up and
// publishes to Kafka based on the `topic` column.
func (r *OutboxRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, ev model.OutboxEvent) error {
	const q = `
		INSERT INTO outbox (aggregate, aggregate_id, topic, payload, created_at)
		VALUES (?, ?, ?, ?, NOW())
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, ev.Aggregate, ev.AggregateID, ev.Topic, ev.Payload)

		return err
	})
}

func (r *OutboxRepositoryImpl) InsertMissingContacts(ctx context.Context, tx *sqlx.Tx, topic string, ev model.MissingContactsEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal missing contacts event: %w", err)
	}

	return r.Insert(ctx, tx, model.OutboxEvent{
		Aggregate:   AggregateRun,
		AggregateID: ev.RunID,
		Topic:       topic,
		Payload:     payload,
	})
}
