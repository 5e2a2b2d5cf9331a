package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/giveme-app/giveme-api/internal/config"
	"github.com/giveme-app/giveme-api/internal/db"
	"github.com/giveme-app/giveme-api/internal/models"
	"github.com/giveme-app/giveme-api/internal/push"
	"github.com/giveme-app/giveme-api/internal/utils"
)

// Message history page size
const messageLimit = 50

// ChatService handles conversations and messages. Sent messages are also
// published to the realtime hub so subscribers see them without polling.
type ChatService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	hub        *push.Hub
}

// NewChatService creates a new ChatService instance
func NewChatService(cfg *config.Config, hub *push.Hub) *ChatService {
	return &ChatService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		hub:        hub,
	}
}

// IsParticipant reports whether the user belongs to the conversation.
// The realtime hub uses this to authorize subscriptions.
func IsParticipant(ctx context.Context, userID, conversationID uuid.UUID) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM conversations
		WHERE id = $1 AND (user_a_id = $2 OR user_b_id = $2)
	`, conversationID, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListConversations returns the user's conversations, most recent activity first
func (s *ChatService) ListConversations(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT cv.id, cv.user_a_id, cv.user_b_id, cv.last_message_at, cv.created_at,
		       other.id, other.username
		FROM conversations cv
		JOIN users other ON other.id = CASE WHEN cv.user_a_id = $1 THEN cv.user_b_id ELSE cv.user_a_id END
		WHERE cv.user_a_id = $1 OR cv.user_b_id = $1
		ORDER BY cv.last_message_at DESC NULLS LAST, cv.created_at DESC
	`, userUUID)

	if err != nil {
		log.Printf("error querying conversations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch conversations"})
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var conv models.Conversation
		var otherID uuid.UUID
		var otherName string

		if err := rows.Scan(
			&conv.ID,
			&conv.UserAID,
			&conv.UserBID,
			&conv.LastMessageAt,
			&conv.CreatedAt,
			&otherID,
			&otherName,
		); err != nil {
			log.Printf("error scanning conversation: %v", err)
			continue
		}

		conv.OtherUserID = &otherID
		conv.OtherUserName = otherName
		conversations = append(conversations, conv)
	}

	return c.JSON(conversations)
}

// CreateConversation finds or creates the conversation with a peer,
// identified by the peer's chat user ID
func (s *ChatService) CreateConversation(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var requestData struct {
		PeerChatUserID string `json:"peer_chat_user_id"`
		// Field name kept from the Supabase-era web client
		PeerSupabaseUserID string `json:"peer_supabase_user_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	peerRef := requestData.PeerChatUserID
	if peerRef == "" {
		peerRef = requestData.PeerSupabaseUserID
	}
	if peerRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Peer chat user ID is required"})
	}

	peerChatUUID, err := uuid.Parse(peerRef)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid peer chat user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var peerUUID uuid.UUID
	err = db.Pool.QueryRow(ctx, `
		SELECT user_id FROM user_profiles WHERE chat_user_id = $1
	`, peerChatUUID).Scan(&peerUUID)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Peer not found"})
		}
		log.Printf("error resolving peer: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve peer"})
	}

	if peerUUID == userUUID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot start a conversation with yourself"})
	}

	// One conversation per pair, regardless of who started it
	var existingID uuid.UUID
	err = db.Pool.QueryRow(ctx, `
		SELECT id FROM conversations
		WHERE (user_a_id = $1 AND user_b_id = $2) OR (user_a_id = $2 AND user_b_id = $1)
	`, userUUID, peerUUID).Scan(&existingID)

	if err != nil && err != pgx.ErrNoRows {
		log.Printf("error checking existing conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check conversation"})
	}

	if err == nil {
		return c.JSON(fiber.Map{
			"id":     existingID,
			"is_new": false,
		})
	}

	conversationID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO conversations (id, user_a_id, user_b_id)
		VALUES ($1, $2, $3)
	`, conversationID, userUUID, peerUUID)

	if err != nil {
		log.Printf("error creating conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create conversation"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     conversationID,
		"is_new": true,
	})
}

// ListMessages returns a conversation's messages, newest first.
// The client reverses them into chronological order.
func (s *ChatService) ListMessages(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	conversationID := c.Params("id")

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	conversationUUID, err := uuid.Parse(conversationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	ok, err := IsParticipant(ctx, userUUID, conversationUUID)
	if err != nil {
		log.Printf("error checking conversation access: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check conversation access"})
	}
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have access to this conversation"})
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, conversationUUID, messageLimit)

	if err != nil {
		log.Printf("error querying messages: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			log.Printf("error scanning message: %v", err)
			continue
		}
		messages = append(messages, msg)
	}

	return c.JSON(messages)
}

// SendMessage stores a message, bumps the conversation and publishes the
// created row to realtime subscribers. The response body is the created
// Message so the client appends the authoritative id/timestamp.
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	conversationID := c.Params("id")

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	conversationUUID, err := uuid.Parse(conversationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var requestData struct {
		Body string `json:"body"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	requestData.Body = strings.TrimSpace(requestData.Body)
	if requestData.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message body cannot be empty"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	ok, err := IsParticipant(ctx, userUUID, conversationUUID)
	if err != nil {
		log.Printf("error checking conversation access: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check conversation access"})
	}
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have access to this conversation"})
	}

	// Messages carry the sender's chat user ID, the identifier the
	// realtime layer and the client compare against
	var senderChatID uuid.UUID
	err = db.Pool.QueryRow(ctx, `
		SELECT chat_user_id FROM user_profiles WHERE user_id = $1
	`, userUUID).Scan(&senderChatID)

	if err != nil {
		log.Printf("error resolving sender chat ID: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve sender"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("error starting transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	defer tx.Rollback(ctx)

	messageID := uuid.New()
	now := time.Now().UTC()

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, messageID, conversationUUID, senderChatID, requestData.Body, now)

	if err != nil {
		log.Printf("error inserting message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save message"})
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET last_message_at = $1 WHERE id = $2
	`, now, conversationUUID)

	if err != nil {
		log.Printf("error updating conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update conversation"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("error committing transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	message := models.Message{
		ID:             messageID,
		ConversationID: conversationUUID,
		SenderID:       senderChatID,
		Body:           requestData.Body,
		CreatedAt:      now,
	}

	if s.hub != nil {
		s.hub.PublishMessage(conversationUUID, message)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}
