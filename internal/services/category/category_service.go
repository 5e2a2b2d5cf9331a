package category

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"github.com/giveme-app/giveme-api/internal/config"
	"github.com/giveme-app/giveme-api/internal/db"
	"github.com/giveme-app/giveme-api/internal/models"
)

// CategoryService serves the static category reference data
type CategoryService struct {
	cfg *config.Config
}

// NewCategoryService creates a new CategoryService instance
func NewCategoryService(cfg *config.Config) *CategoryService {
	return &CategoryService{cfg: cfg}
}

// ListCategories returns all categories ordered by name
func (s *CategoryService) ListCategories(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, slug FROM categories ORDER BY name ASC
	`)
	if err != nil {
		log.Printf("error querying categories: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch categories"})
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug); err != nil {
			log.Printf("error scanning category: %v", err)
			continue
		}
		categories = append(categories, cat)
	}

	return c.JSON(categories)
}
