package push

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrNotParticipant is returned when a user subscribes to a conversation
// they are not part of.
var ErrNotParticipant = errors.New("user is not a participant of this conversation")

const (
	// How long to wait for a pong before giving up on the connection
	pongWait = 60 * time.Second

	// Ping interval, must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	writeWait = 10 * time.Second

	maxMessageSize = 4 * 1024

	sendBufferSize = 256
)

// Client is a single realtime connection
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID

	conn      *websocket.Conn
	send      chan []byte
	hub       *Hub
	closeChan chan struct{}
}

// NewClient creates a new Client instance
func NewClient(userID uuid.UUID, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:        uuid.New(),
		UserID:    userID,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		hub:       hub,
		closeChan: make(chan struct{}),
	}
}

// Start registers the client and runs its read/write pumps
func (c *Client) Start() {
	c.hub.AddClient(c)

	go c.readPump()
	go c.writePump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c.ID)
		c.conn.Close()
		close(c.closeChan)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("unexpected close: %v", err)
			}
			break
		}

		c.handleIncoming(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("error writing push frame: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

// handleIncoming processes subscribe/unsubscribe requests from the client
func (c *Client) handleIncoming(message []byte) {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("error unmarshaling push event: %v", err)
		c.reply(Event{Type: EventError, Error: "invalid event"})
		return
	}

	switch event.Type {
	case EventSubscribe:
		if event.ConversationID == nil {
			c.reply(Event{Type: EventError, Error: "conversation_id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.hub.Subscribe(ctx, c, *event.ConversationID)
		cancel()

		if err != nil {
			log.Printf("subscribe rejected for user %s: %v", c.UserID, err)
			c.reply(Event{Type: EventError, ConversationID: event.ConversationID, Error: "subscription rejected"})
			return
		}

		c.reply(Event{Type: EventSubscribed, ConversationID: event.ConversationID, Timestamp: time.Now()})

	case EventUnsubscribe:
		if event.ConversationID == nil {
			return
		}
		c.hub.Unsubscribe(c, *event.ConversationID)
		c.reply(Event{Type: EventUnsubscribed, ConversationID: event.ConversationID, Timestamp: time.Now()})

	default:
		log.Printf("unhandled push event type: %s", event.Type)
	}
}

func (c *Client) reply(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
