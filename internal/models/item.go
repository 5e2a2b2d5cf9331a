package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing types. Price applies only to Sell, trade interest only to Trade.
const (
	TypeSell     = "Sell"
	TypeDonation = "Donation"
	TypeTrade    = "Trade"
)

// Item condition
const (
	StatusNew  = "new"
	StatusUsed = "used"
)

// Listing visibility
const (
	ListingActive   = "active"
	ListingInactive = "inactive"
)

// Item represents a marketplace listing
type Item struct {
	ID            uuid.UUID   `json:"id"`
	UserID        uuid.UUID   `json:"user_id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Type          string      `json:"type"`
	Price         *float64    `json:"price,omitempty"`
	TradeInterest *string     `json:"trade_interest,omitempty"`
	Category      *Category   `json:"category,omitempty"`
	CategoryName  string      `json:"category_name,omitempty"`
	City          *City       `json:"city,omitempty"`
	Status        string      `json:"status"`
	ListingState  string      `json:"listing_state"`
	Photos        []ItemPhoto `json:"photos"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// ItemPhoto represents one photo of an item, stored in Cloudinary
type ItemPhoto struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	URL       string    `json:"url"`
	PublicID  string    `json:"public_id,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is static reference data, never mutated through the API
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// City is where an item is offered
type City struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	State string    `json:"state,omitempty"`
}

// ValidType reports whether t is one of the known listing types
func ValidType(t string) bool {
	return t == TypeSell || t == TypeDonation || t == TypeTrade
}
