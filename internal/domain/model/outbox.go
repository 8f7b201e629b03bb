package model

// Event types written to the outbox alongside order mutations.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OutboxMessage is a pending lifecycle event. Rows are written in the same
// transaction as the order mutation and drained by the relay.
type OutboxMessage struct {
	ID        int64
	Topic     string
	Key       string
	EventType string
	Payload   []byte
	Headers   map[string]string
}
