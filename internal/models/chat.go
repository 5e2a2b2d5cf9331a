package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a chat between exactly two users. LastMessageAt is nil
// until the first message is sent.
type Conversation struct {
	ID            uuid.UUID  `json:"id"`
	UserAID       uuid.UUID  `json:"user_a_id"`
	UserBID       uuid.UUID  `json:"user_b_id"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`

	// Peer display info for list responses
	OtherUserID   *uuid.UUID `json:"other_user_id,omitempty"`
	OtherUserName string     `json:"other_user_name,omitempty"`
}

// Message is one chat message. Within a conversation messages are totally
// ordered by (created_at, id).
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}
