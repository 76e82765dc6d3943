package mq

import "time"

// Routing keys on the events exchange.
const (
	TodoCreatedKey = "todo.created"
	TodoUpdatedKey = "todo.updated"
	TodoDeletedKey = "todo.deleted"
)

type TodoChangedPayload struct {
	ID         int64     `json:"id"`
	Task       string    `json:"task"`
	Category   string    `json:"category"`
	Completed  bool      `json:"completed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

type TodoDeletedPayload struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}
