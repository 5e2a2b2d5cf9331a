package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite pairs a user with an item; existence means "favorited"
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`

	// Embedded item for list responses
	Item *Item `json:"item,omitempty"`
}
