package category

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the public category route
func (s *CategoryService) SetupRoutes(app *fiber.App) {
	app.Get("/categories/", s.ListCategories)
}
