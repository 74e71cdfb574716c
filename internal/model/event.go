package model

// MissingContactsEvent is the payload written to the outbox (and relayed to
// Kafka) when an operator asks for the missing-phone list to be mailed.
type MissingContactsEvent struct {
	RunID string   `json:"run_id"`
	Names []string `json:"names"`
}
