package push

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a realtime event on the wire
type EventType string

// Client → server
const (
	EventSubscribe   EventType = "subscribe"
	EventUnsubscribe EventType = "unsubscribe"
)

// Server → client
const (
	EventNewMessage   EventType = "message.new"
	EventSubscribed   EventType = "subscribed"
	EventUnsubscribed EventType = "unsubscribed"
	EventError        EventType = "error"
)

// Event is the envelope for every realtime frame. A subscription is always
// scoped to one conversation; message.new events carry the inserted Message
// row as payload.
type Event struct {
	Type           EventType       `json:"type"`
	ConversationID *uuid.UUID      `json:"conversation_id,omitempty"`
	Timestamp      time.Time       `json:"timestamp,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Error          string          `json:"error,omitempty"`
}
