package chatsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giveme-app/giveme-api/client"
)

type staticTokens struct{ token string }

func (s staticTokens) Access() string { return s.token }

// gatewayStub upgrades one connection, acknowledges the subscribe frame and
// then pushes a single message.new event
func gatewayStub(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/realtime", r.URL.Path)
		assert.Equal(t, "the-token", r.URL.Query().Get("token"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var subscribe wsEvent
		if err := conn.ReadJSON(&subscribe); err != nil {
			return
		}
		assert.Equal(t, "subscribe", subscribe.Type)

		conn.WriteJSON(wsEvent{Type: "subscribed", ConversationID: subscribe.ConversationID})

		payload, _ := json.Marshal(client.Message{ID: "m1", Body: "oi"})
		conn.WriteJSON(wsEvent{
			Type:           "message.new",
			ConversationID: subscribe.ConversationID,
			Payload:        payload,
		})

		// Hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestSubscribeDeliversPushedMessages(t *testing.T) {
	server := gatewayStub(t)
	defer server.Close()

	subscriber, err := NewWSSubscriber(server.URL, staticTokens{token: "the-token"})
	require.NoError(t, err)

	sub, err := subscriber.Subscribe(context.Background(), "c1")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case message := <-sub.Events():
		assert.Equal(t, "m1", message.ID)
		assert.Equal(t, "oi", message.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the pushed message")
	}

	require.NoError(t, sub.Close())

	select {
	case _, open := <-sub.Events():
		assert.False(t, open, "events channel must close with the subscription")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after Close")
	}
}

func TestAdoptAfterCloseDropsTheConnection(t *testing.T) {
	server := gatewayStub(t)
	defer server.Close()

	endpoint := "ws" + strings.TrimPrefix(server.URL, "http") + "/realtime?token=the-token"
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	require.NoError(t, err)

	sub := &wsSubscription{
		conversationID: "c1",
		events:         make(chan client.Message, 1),
		done:           make(chan struct{}),
	}

	require.NoError(t, sub.Close())

	// A dial that finished after Close must not be kept alive
	assert.False(t, sub.adopt(conn))
	assert.Error(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
}

func TestRewritesSchemeForWebsocketDial(t *testing.T) {
	subscriber, err := NewWSSubscriber("https://api.example.com", staticTokens{})
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/realtime", subscriber.endpoint)

	subscriber, err = NewWSSubscriber("http://localhost:8001", staticTokens{})
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8001/realtime", subscriber.endpoint)
}
