package favorite

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/giveme-app/giveme-api/internal/config"
	"github.com/giveme-app/giveme-api/internal/db"
	"github.com/giveme-app/giveme-api/internal/models"
	"github.com/giveme-app/giveme-api/internal/utils"
)

// FavoriteService handles the user-item favorite relationship
type FavoriteService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewFavoriteService creates a new FavoriteService instance
func NewFavoriteService(cfg *config.Config) *FavoriteService {
	return &FavoriteService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// AddFavorite adds an item to the current user's favorites
func (s *FavoriteService) AddFavorite(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var requestData struct {
		ItemID string `json:"item_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if requestData.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_id is required"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	itemUUID, err := uuid.Parse(requestData.ItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var exists bool
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM items WHERE id = $1 AND listing_state = 'active')
	`, itemUUID).Scan(&exists)

	if err != nil {
		log.Printf("error checking item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check item"})
	}

	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found or inactive"})
	}

	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND item_id = $2)
	`, userUUID, itemUUID).Scan(&exists)

	if err != nil {
		log.Printf("error checking favorite: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check favorite"})
	}

	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Item is already favorited"})
	}

	favoriteID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO favorites (id, user_id, item_id)
		VALUES ($1, $2, $3)
	`, favoriteID, userUUID, itemUUID)

	if err != nil {
		log.Printf("error inserting favorite: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add favorite"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      favoriteID,
	})
}

// RemoveFavorite removes an item from the current user's favorites.
// A missing row yields 404; the client treats that as success.
func (s *FavoriteService) RemoveFavorite(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	itemID := c.Params("itemId")

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	itemUUID, err := uuid.Parse(itemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND item_id = $2
	`, userUUID, itemUUID)

	if err != nil {
		log.Printf("error deleting favorite: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove favorite"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item is not in favorites"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListFavorites returns the current user's favorites with the items embedded
func (s *FavoriteService) ListFavorites(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT f.id, f.user_id, f.item_id, f.created_at,
		       i.id, i.user_id, i.title, i.description, i.type, i.price, i.trade_interest,
		       i.status, i.listing_state, i.created_at, i.updated_at,
		       c.id, c.name, c.slug
		FROM favorites f
		JOIN items i ON i.id = f.item_id
		JOIN categories c ON c.id = i.category_id
		WHERE f.user_id = $1 AND i.listing_state = 'active'
		ORDER BY f.created_at DESC
	`, userUUID)

	if err != nil {
		log.Printf("error querying favorites: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch favorites"})
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var favorite models.Favorite
		var item models.Item
		var description, tradeInterest *string
		var price *float64
		var category models.Category

		if err := rows.Scan(
			&favorite.ID,
			&favorite.UserID,
			&favorite.ItemID,
			&favorite.CreatedAt,
			&item.ID,
			&item.UserID,
			&item.Title,
			&description,
			&item.Type,
			&price,
			&tradeInterest,
			&item.Status,
			&item.ListingState,
			&item.CreatedAt,
			&item.UpdatedAt,
			&category.ID,
			&category.Name,
			&category.Slug,
		); err != nil {
			log.Printf("error scanning favorite: %v", err)
			continue
		}

		if description != nil {
			item.Description = *description
		}
		item.Price = price
		item.TradeInterest = tradeInterest
		item.Category = &category
		item.CategoryName = category.Name

		photoRows, err := db.Pool.Query(ctx, `
			SELECT id, item_id, url, public_id, position, created_at
			FROM item_photos
			WHERE item_id = $1
			ORDER BY position ASC
		`, item.ID)

		if err != nil {
			log.Printf("error querying photos: %v", err)
		} else {
			photos := []models.ItemPhoto{}
			for photoRows.Next() {
				var photo models.ItemPhoto
				if err := photoRows.Scan(
					&photo.ID,
					&photo.ItemID,
					&photo.URL,
					&photo.PublicID,
					&photo.Position,
					&photo.CreatedAt,
				); err != nil {
					log.Printf("error scanning photo: %v", err)
					continue
				}
				photos = append(photos, photo)
			}
			photoRows.Close()
			item.Photos = photos
		}

		favorite.Item = &item
		favorites = append(favorites, favorite)
	}

	return c.JSON(favorites)
}
