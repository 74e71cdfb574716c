package model

import "time"

// OutboxEvent is one row of the outbox table. The CDC relay publishes
// Payload to Topic and uses AggregateID as the Kafka key.
type OutboxEvent struct {
	ID          int64     `db:"id"`
	Aggregate   string    `db:"aggregate"`    // e.g. "run"
	AggregateID string    `db:"aggregate_id"` // run.ID
	Topic       string    `db:"topic"`
	Payload     []byte    `db:"payload"`
	Attempts    int       `db:"attempts"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
