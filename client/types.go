package client

import (
	"encoding/json"
	"strconv"
	"time"
)

// FlexID is an identifier that may arrive as a JSON string or number.
// Sender identifiers cross two backends, so the comparison side must not
// depend on the wire type.
type FlexID string

// UnmarshalJSON accepts both "42" and 42
func (id *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string { return string(id) }

// Category is the normalized category shape. The API historically returned
// either a bare name string or an {id, name} object; both are resolved here
// at the decode boundary so nothing downstream sees the raw union.
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// UnmarshalJSON resolves the string-or-object union
func (c *Category) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = Category{Name: name}
		return nil
	}

	type alias Category
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = Category(decoded)
	return nil
}

// City is where an item is offered
type City struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// Photo is one image of an item
type Photo struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// Item is a marketplace listing as served by the API.
// Price is present only for Sell items, TradeInterest only for Trade items.
type Item struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	Price         *float64  `json:"price,omitempty"`
	TradeInterest *string   `json:"trade_interest,omitempty"`
	Category      *Category `json:"category,omitempty"`
	CategoryName  string    `json:"category_name,omitempty"`
	City          *City     `json:"city,omitempty"`
	Status        string    `json:"status"`
	ListingState  string    `json:"listing_state"`
	Photos        []Photo   `json:"photos"`
	CreatedAt     time.Time `json:"created_at"`
}

// ResolvedCategoryName returns the display name regardless of which field
// the server filled in
func (i Item) ResolvedCategoryName() string {
	if i.CategoryName != "" {
		return i.CategoryName
	}
	if i.Category != nil {
		return i.Category.Name
	}
	return ""
}

// PriceString formats the price for display, empty for non-Sell items
func (i Item) PriceString() string {
	if i.Price == nil {
		return ""
	}
	return strconv.FormatFloat(*i.Price, 'f', 2, 64)
}

// Favorite pairs the current user with an item
type Favorite struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Item      *Item     `json:"item,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a chat with one peer
type Conversation struct {
	ID            string     `json:"id"`
	LastMessageAt *time.Time `json:"last_message_at"`
	OtherUserName string     `json:"other_user_name,omitempty"`
}

// Message is one chat message
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       FlexID    `json:"sender_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profile is the current user's profile
type Profile struct {
	UserID               string `json:"user_id"`
	Username             string `json:"username"`
	Email                string `json:"email,omitempty"`
	PhotoURL             string `json:"photo_url,omitempty"`
	Bio                  string `json:"bio,omitempty"`
	City                 *City  `json:"city,omitempty"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	ChatUserID           FlexID `json:"chat_user_id"`
}

// TokenPair is the credential pair returned by login
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
