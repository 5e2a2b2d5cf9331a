package item

import (
	"github.com/gofiber/fiber/v3"

	"github.com/giveme-app/giveme-api/internal/middleware"
)

// SetupRoutes registers the item API routes
func (s *ItemService) SetupRoutes(app *fiber.App) {
	api := app.Group("/items")

	// Public routes
	api.Get("/", s.ListItems)

	// Protected routes (registered before the :id wildcard so that
	// /items/my-items/ does not match it)
	authMiddleware := middleware.AuthMiddleware(s.jwtService)

	api.Get("/my-items/", s.GetMyItems, authMiddleware)
	api.Post("/create/", s.CreateItem, authMiddleware)
	api.Put("/update/:id/", s.UpdateItem, authMiddleware)
	api.Delete("/delete/:id/", s.DeleteItem, authMiddleware)
	api.Post("/:id/photos/", s.AddPhotos, authMiddleware)
	api.Delete("/photos/:photoId/", s.DeletePhoto, authMiddleware)

	api.Get("/:id/", s.GetItem)
}
