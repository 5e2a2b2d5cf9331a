package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/giveme-app/giveme-api/internal/middleware"
)

// SetupRoutes registers the chat API routes
func (s *ChatService) SetupRoutes(app *fiber.App) {
	api := app.Group("/chat")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/conversations/", s.ListConversations)
	api.Post("/conversations/create/", s.CreateConversation)
	api.Get("/conversations/:id/messages/", s.ListMessages)
	api.Post("/conversations/:id/messages/send/", s.SendMessage)
}
