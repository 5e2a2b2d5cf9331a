package client

import (
	"context"
	"net/http"
)

// Conversations returns the current user's conversations
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var conversations []Conversation
	err := c.do(ctx, http.MethodGet, "/chat/conversations/", nil, &conversations)
	return conversations, err
}

// CreateConversation finds or creates the conversation with a peer,
// identified by the peer's chat user ID
func (c *Client) CreateConversation(ctx context.Context, peerChatUserID string) (string, error) {
	var response struct {
		ID    string `json:"id"`
		IsNew bool   `json:"is_new"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/conversations/create/",
		map[string]string{"peer_chat_user_id": peerChatUserID}, &response)
	return response.ID, err
}

// Messages returns a conversation's message history, newest first.
// The conversation synchronizer reverses it into display order.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	var messages []Message
	err := c.do(ctx, http.MethodGet, "/chat/conversations/"+conversationID+"/messages/", nil, &messages)
	return messages, err
}

// SendMessage sends a message and returns the created row with the
// server-assigned ID and timestamp
func (c *Client) SendMessage(ctx context.Context, conversationID, body string) (Message, error) {
	var message Message
	err := c.do(ctx, http.MethodPost, "/chat/conversations/"+conversationID+"/messages/send/",
		map[string]string{"body": body}, &message)
	return message, err
}
