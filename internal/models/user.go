package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the user-facing profile attached to an account.
// ChatUserID is the identifier the realtime layer keys on; it is generated
// at registration and never changes.
type Profile struct {
	UserID               uuid.UUID `json:"user_id"`
	Username             string    `json:"username"`
	Email                string    `json:"email,omitempty"`
	PhotoURL             string    `json:"photo_url,omitempty"`
	Bio                  string    `json:"bio,omitempty"`
	City                 *City     `json:"city,omitempty"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	ChatUserID           uuid.UUID `json:"chat_user_id"`
}
