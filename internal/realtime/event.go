package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Event is the wire shape published on the notification bus. The live
// delivery consumer (websocket/SSE gateway) subscribes on the other side;
// this service only publishes.
type Event struct {
	UserID uuid.UUID `json:"user_id"`
	Kind   string    `json:"kind"`
	Title  string    `json:"title"`
	Body   string    `json:"body,omitempty"`
	SentAt time.Time `json:"sent_at"`
}
