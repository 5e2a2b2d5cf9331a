package push

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuthorizeFunc decides whether a user may subscribe to a conversation.
// The chat service wires this to a participant check.
type AuthorizeFunc func(ctx context.Context, userID, conversationID uuid.UUID) (bool, error)

// Hub is the central registry of realtime connections and their
// per-conversation subscriptions.
type Hub struct {
	authorize AuthorizeFunc

	clientsMutex sync.RWMutex
	clients      map[uuid.UUID]*Client

	subsMutex sync.RWMutex
	subs      map[uuid.UUID]map[uuid.UUID]bool // conversationID -> set of clientIDs
}

// NewHub creates a new Hub instance
func NewHub(authorize AuthorizeFunc) *Hub {
	return &Hub{
		authorize: authorize,
		clients:   make(map[uuid.UUID]*Client),
		subs:      make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

// AddClient registers a new connection
func (h *Hub) AddClient(client *Client) {
	h.clientsMutex.Lock()
	h.clients[client.ID] = client
	h.clientsMutex.Unlock()

	log.Printf("push client %s connected for user %s", client.ID, client.UserID)
}

// RemoveClient drops a connection and all its subscriptions
func (h *Hub) RemoveClient(clientID uuid.UUID) {
	h.clientsMutex.Lock()
	client, exists := h.clients[clientID]
	if exists {
		delete(h.clients, clientID)
	}
	h.clientsMutex.Unlock()

	if !exists {
		return
	}

	h.subsMutex.Lock()
	for conversationID, clients := range h.subs {
		delete(clients, clientID)
		if len(clients) == 0 {
			delete(h.subs, conversationID)
		}
	}
	h.subsMutex.Unlock()

	log.Printf("push client %s disconnected for user %s", clientID, client.UserID)
}

// Subscribe attaches a client to a conversation after authorization
func (h *Hub) Subscribe(ctx context.Context, client *Client, conversationID uuid.UUID) error {
	ok, err := h.authorize(ctx, client.UserID, conversationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}

	h.subsMutex.Lock()
	if _, exists := h.subs[conversationID]; !exists {
		h.subs[conversationID] = make(map[uuid.UUID]bool)
	}
	h.subs[conversationID][client.ID] = true
	h.subsMutex.Unlock()

	return nil
}

// Unsubscribe detaches a client from a conversation
func (h *Hub) Unsubscribe(client *Client, conversationID uuid.UUID) {
	h.subsMutex.Lock()
	if clients, exists := h.subs[conversationID]; exists {
		delete(clients, client.ID)
		if len(clients) == 0 {
			delete(h.subs, conversationID)
		}
	}
	h.subsMutex.Unlock()
}

// PublishMessage fans an inserted message row out to every connection
// subscribed to its conversation
func (h *Hub) PublishMessage(conversationID uuid.UUID, message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("error marshaling push payload: %v", err)
		return
	}

	event := Event{
		Type:           EventNewMessage,
		ConversationID: &conversationID,
		Timestamp:      time.Now(),
		Payload:        payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling push event: %v", err)
		return
	}

	h.subsMutex.RLock()
	clientIDs := make([]uuid.UUID, 0, len(h.subs[conversationID]))
	for clientID := range h.subs[conversationID] {
		clientIDs = append(clientIDs, clientID)
	}
	h.subsMutex.RUnlock()

	for _, clientID := range clientIDs {
		h.clientsMutex.RLock()
		client, exists := h.clients[clientID]
		h.clientsMutex.RUnlock()

		if !exists {
			continue
		}

		select {
		case client.send <- data:
		default:
			// Slow consumer, drop the connection
			log.Printf("send buffer full for push client %s, closing", client.ID)
			client.conn.Close()
			h.RemoveClient(client.ID)
		}
	}
}

// Shutdown closes every connection
func (h *Hub) Shutdown() {
	h.clientsMutex.Lock()
	for _, client := range h.clients {
		client.conn.Close()
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.clientsMutex.Unlock()

	h.subsMutex.Lock()
	h.subs = make(map[uuid.UUID]map[uuid.UUID]bool)
	h.subsMutex.Unlock()
}
