package chatsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/giveme-app/giveme-api/client"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	handshakeWait  = 10 * time.Second
	eventBuffer    = 64
)

// TokenSource supplies the access credential for the websocket handshake.
// client.TokenStore satisfies it.
type TokenSource interface {
	Access() string
}

// wsEvent mirrors the realtime gateway's frame envelope
type wsEvent struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// WSSubscriber opens push subscriptions over the realtime websocket
// gateway. Each Subscribe call owns its own connection; when the connection
// drops, the subscription redials with capped exponential backoff and
// resubscribes to the same conversation.
type WSSubscriber struct {
	endpoint string
	tokens   TokenSource
	dialer   *websocket.Dialer
}

// NewWSSubscriber creates a subscriber for the gateway at baseURL
// (http:// or https://; the scheme is rewritten for the websocket dial)
func NewWSSubscriber(baseURL string, tokens TokenSource) (*WSSubscriber, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing realtime URL: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	}
	parsed.Path = "/realtime"

	return &WSSubscriber{
		endpoint: parsed.String(),
		tokens:   tokens,
		dialer:   &websocket.Dialer{HandshakeTimeout: handshakeWait},
	}, nil
}

// Subscribe dials the gateway, subscribes to conversationID and returns the
// live subscription
func (s *WSSubscriber) Subscribe(ctx context.Context, conversationID string) (Subscription, error) {
	sub := &wsSubscription{
		subscriber:     s,
		conversationID: conversationID,
		events:         make(chan client.Message, eventBuffer),
		done:           make(chan struct{}),
	}

	conn, err := sub.connect(ctx)
	if err != nil {
		return nil, err
	}
	sub.adopt(conn)

	go sub.run(conn)
	return sub, nil
}

type wsSubscription struct {
	subscriber     *WSSubscriber
	conversationID string
	events         chan client.Message

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

func (s *wsSubscription) Events() <-chan client.Message {
	return s.events
}

// Close releases the subscription; the events channel is closed once the
// read loop exits
func (s *wsSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	if s.conn != nil {
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.conn.Close()
	}
	return nil
}

// connect dials the gateway and sends the subscribe frame
func (s *wsSubscription) connect(ctx context.Context) (*websocket.Conn, error) {
	endpoint := s.subscriber.endpoint + "?token=" + url.QueryEscape(s.subscriber.tokens.Access())
	conn, _, err := s.subscriber.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing realtime gateway: %w", err)
	}

	subscribe := wsEvent{Type: "subscribe", ConversationID: s.conversationID}
	if err := conn.WriteJSON(subscribe); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribing to conversation: %w", err)
	}
	return conn, nil
}

// adopt installs a freshly dialed connection. A Close that landed while the
// dial was in flight wins: the new connection is dropped immediately so
// neither it nor the read loop outlives the subscription.
func (s *wsSubscription) adopt(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		conn.Close()
		return false
	}
	s.conn = conn
	return true
}

func (s *wsSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// run reads frames until Close, reconnecting with capped exponential
// backoff when the connection drops
func (s *wsSubscription) run(conn *websocket.Conn) {
	defer close(s.events)

	backoff := initialBackoff
	for {
		err := s.readLoop(conn)
		if s.isClosed() {
			return
		}
		log.Printf("realtime connection lost: %v", err)

		for {
			select {
			case <-s.done:
				return
			case <-time.After(backoff):
			}

			next, err := s.connect(context.Background())
			if err != nil {
				log.Printf("realtime reconnect failed: %v", err)
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			if !s.adopt(next) {
				return
			}
			conn = next
			backoff = initialBackoff
			break
		}
	}
}

// readLoop decodes frames from one connection until it fails
func (s *wsSubscription) readLoop(conn *websocket.Conn) error {
	for {
		var event wsEvent
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}

		switch event.Type {
		case "message.new":
			if event.ConversationID != s.conversationID {
				continue
			}
			var message client.Message
			if err := json.Unmarshal(event.Payload, &message); err != nil {
				log.Printf("realtime: bad message payload: %v", err)
				continue
			}
			select {
			case s.events <- message:
			case <-s.done:
				return nil
			}
		case "error":
			log.Printf("realtime: server error: %s", event.Error)
		}
	}
}
