package model

import (
	"encoding/json"
	"time"
)

// Event is a persisted audit record. Every lifecycle transition and submit is
// recorded so the full assessment history can be reconstructed.
type Event struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	RefID     string          `json:"ref_id"` // session, employee, or goal id
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
