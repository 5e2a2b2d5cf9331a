package favorite

import (
	"github.com/gofiber/fiber/v3"

	"github.com/giveme-app/giveme-api/internal/middleware"
)

// SetupRoutes registers the favorites API routes
func (s *FavoriteService) SetupRoutes(app *fiber.App) {
	api := app.Group("/favorites")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.ListFavorites)
	api.Post("/add/", s.AddFavorite)
	api.Delete("/remove/:itemId/", s.RemoveFavorite)
}
