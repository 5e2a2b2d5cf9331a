package item

import (
	"context"
	"log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/giveme-app/giveme-api/internal/config"
	"github.com/giveme-app/giveme-api/internal/db"
	"github.com/giveme-app/giveme-api/internal/models"
	"github.com/giveme-app/giveme-api/internal/services/cloudinary"
	"github.com/giveme-app/giveme-api/internal/utils"
)

// photoUploader is the slice of the Cloudinary service the item handlers use
type photoUploader interface {
	UploadPhoto(ctx context.Context, fileHeader *multipart.FileHeader) (string, string, error)
	DeletePhoto(ctx context.Context, publicID string) error
}

// ItemService handles marketplace listings
type ItemService struct {
	cfg               *config.Config
	jwtService        *utils.JWTService
	cloudinaryService photoUploader
}

// NewItemService creates a new ItemService instance
func NewItemService(cfg *config.Config, cloudinaryService *cloudinary.CloudinaryService) *ItemService {
	return &ItemService{
		cfg:               cfg,
		jwtService:        utils.NewJWTService(cfg.JWTSecret),
		cloudinaryService: cloudinaryService,
	}
}

const itemSelect = `
	SELECT i.id, i.user_id, i.title, i.description, i.type, i.price, i.trade_interest,
	       i.status, i.listing_state, i.created_at, i.updated_at,
	       c.id, c.name, c.slug,
	       ci.id, ci.name, ci.state
	FROM items i
	JOIN categories c ON c.id = i.category_id
	LEFT JOIN cities ci ON ci.id = i.city_id
`

// ListItems returns all active items, newest first (public)
func (s *ItemService) ListItems(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, itemSelect+`
		WHERE i.listing_state = 'active'
		ORDER BY i.created_at DESC
	`)
	if err != nil {
		log.Printf("error querying items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch items"})
	}
	defer rows.Close()

	items, err := scanItems(ctx, rows)
	if err != nil {
		log.Printf("error scanning items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch items"})
	}

	return c.JSON(items)
}

// GetItem returns one active item by ID (public)
func (s *ItemService) GetItem(c fiber.Ctx) error {
	itemID := c.Params("id")

	itemUUID, err := uuid.Parse(itemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := loadItem(ctx, itemUUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
		}
		log.Printf("error fetching item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch item"})
	}

	return c.JSON(item)
}

// GetMyItems returns every item owned by the current user, drafts included
func (s *ItemService) GetMyItems(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, itemSelect+`
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC
	`, userUUID)
	if err != nil {
		log.Printf("error querying my items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch items"})
	}
	defer rows.Close()

	items, err := scanItems(ctx, rows)
	if err != nil {
		log.Printf("error scanning items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch items"})
	}

	return c.JSON(items)
}

// CreateItem creates a listing from a multipart form, photos included
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("error reading multipart form: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid multipart form"})
	}

	title := strings.TrimSpace(formValue(form.Value, "title"))
	description := strings.TrimSpace(formValue(form.Value, "description"))
	itemType := normalizeType(formValue(form.Value, "type"))
	status := formValue(form.Value, "status")
	listingState := formValue(form.Value, "listing_state")
	categoryRef := formValue(form.Value, "category")

	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}
	if !models.ValidType(itemType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Type must be Sell, Donation or Trade"})
	}
	if status != models.StatusNew && status != models.StatusUsed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status must be new or used"})
	}
	if listingState != models.ListingActive && listingState != models.ListingInactive {
		listingState = models.ListingActive
	}
	if categoryRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Category is required"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	categoryID, err := resolveCategory(ctx, categoryRef)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown category"})
		}
		log.Printf("error resolving category: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve category"})
	}

	// Price only makes sense for Sell, trade interest only for Trade
	var price *float64
	if itemType == models.TypeSell {
		priceStr := formValue(form.Value, "price")
		if priceStr == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Price is required for Sell items"})
		}
		parsed, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
		}
		price = &parsed
	}

	var tradeInterest *string
	if itemType == models.TypeTrade {
		if ti := strings.TrimSpace(formValue(form.Value, "trade_interest")); ti != "" {
			tradeInterest = &ti
		}
	}

	var cityID *uuid.UUID
	if cityName := strings.TrimSpace(formValue(form.Value, "city_name")); cityName != "" {
		id, err := upsertCity(ctx, cityName, strings.TrimSpace(formValue(form.Value, "city_state")))
		if err != nil {
			log.Printf("error upserting city: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save city"})
		}
		cityID = &id
	}

	// Store photos before touching the database; uploads can take far
	// longer than the query deadline, so the transaction never waits on them
	uploaded, err := uploadAll(c.Context(), s.cloudinaryService, form.File["photos"])
	if err != nil {
		log.Printf("error uploading photo: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload photo"})
	}

	itemID := uuid.New()

	txCtx, txCancel := db.GetContext()
	defer txCancel()

	tx, err := db.Pool.Begin(txCtx)
	if err != nil {
		log.Printf("error starting transaction: %v", err)
		discardUploads(s.cloudinaryService, uploaded)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	defer tx.Rollback(txCtx)

	_, err = tx.Exec(txCtx, `
		INSERT INTO items (id, user_id, title, description, type, price, trade_interest, category_id, city_id, status, listing_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, itemID, userUUID, title, description, itemType, price, tradeInterest, categoryID, cityID, status, listingState)

	if err != nil {
		log.Printf("error inserting item: %v", err)
		discardUploads(s.cloudinaryService, uploaded)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save item"})
	}

	// Position follows form order
	for i, photo := range uploaded {
		_, err = tx.Exec(txCtx, `
			INSERT INTO item_photos (id, item_id, url, public_id, position)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), itemID, photo.url, photo.publicID, i+1)

		if err != nil {
			log.Printf("error inserting photo: %v", err)
			discardUploads(s.cloudinaryService, uploaded)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save photo"})
		}
	}

	if err = tx.Commit(txCtx); err != nil {
		log.Printf("error committing transaction: %v", err)
		discardUploads(s.cloudinaryService, uploaded)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	item, err := loadItem(txCtx, itemID)
	if err != nil {
		log.Printf("error reloading item: %v", err)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "id": itemID})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

type uploadedPhoto struct {
	url      string
	publicID string
}

// uploadAll stores every photo before any database write. On failure the
// already-stored ones are removed so nothing is left orphaned.
func uploadAll(ctx context.Context, uploader photoUploader, files []*multipart.FileHeader) ([]uploadedPhoto, error) {
	uploaded := make([]uploadedPhoto, 0, len(files))
	for _, fileHeader := range files {
		url, publicID, err := uploader.UploadPhoto(ctx, fileHeader)
		if err != nil {
			discardUploads(uploader, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, uploadedPhoto{url: url, publicID: publicID})
	}
	return uploaded, nil
}

// discardUploads removes stored photos best-effort after a failure
func discardUploads(uploader photoUploader, uploaded []uploadedPhoto) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, photo := range uploaded {
		if err := uploader.DeletePhoto(ctx, photo.publicID); err != nil {
			log.Printf("error removing stored photo %s: %v", photo.publicID, err)
		}
	}
}

// UpdateItem updates a listing; only the owner may do this
func (s *ItemService) UpdateItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	itemID := c.Params("id")

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	itemUUID, err := uuid.Parse(itemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var requestData struct {
		Title         *string  `json:"title"`
		Description   *string  `json:"description"`
		Type          *string  `json:"type"`
		Price         *float64 `json:"price"`
		TradeInterest *string  `json:"trade_interest"`
		Category      *string  `json:"category"`
		Status        *string  `json:"status"`
		ListingState  *string  `json:"listing_state"`
		CityName      *string  `json:"city_name"`
		CityState     *string  `json:"city_state"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	current, err := loadOwnedItem(ctx, itemUUID, userUUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
		}
		log.Printf("error fetching item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch item"})
	}

	if requestData.Title != nil {
		title := strings.TrimSpace(*requestData.Title)
		if title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title cannot be empty"})
		}
		current.Title = title
	}
	if requestData.Description != nil {
		current.Description = strings.TrimSpace(*requestData.Description)
	}
	if requestData.Type != nil {
		itemType := normalizeType(*requestData.Type)
		if !models.ValidType(itemType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Type must be Sell, Donation or Trade"})
		}
		current.Type = itemType
	}
	if requestData.Status != nil {
		if *requestData.Status != models.StatusNew && *requestData.Status != models.StatusUsed {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status must be new or used"})
		}
		current.Status = *requestData.Status
	}
	if requestData.ListingState != nil {
		if *requestData.ListingState != models.ListingActive && *requestData.ListingState != models.ListingInactive {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Listing state must be active or inactive"})
		}
		current.ListingState = *requestData.ListingState
	}
	if requestData.Price != nil {
		if *requestData.Price < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
		}
		current.Price = requestData.Price
	}
	if requestData.TradeInterest != nil {
		current.TradeInterest = requestData.TradeInterest
	}

	// Re-assert the type invariants after any field change
	if current.Type != models.TypeSell {
		current.Price = nil
	}
	if current.Type != models.TypeTrade {
		current.TradeInterest = nil
	}

	categoryID := current.Category.ID
	if requestData.Category != nil {
		categoryID, err = resolveCategory(ctx, *requestData.Category)
		if err != nil {
			if err == pgx.ErrNoRows {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown category"})
			}
			log.Printf("error resolving category: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve category"})
		}
	}

	var cityID *uuid.UUID
	if current.City != nil {
		cityID = &current.City.ID
	}
	if requestData.CityName != nil && *requestData.CityName != "" {
		state := ""
		if requestData.CityState != nil {
			state = *requestData.CityState
		}
		id, err := upsertCity(ctx, strings.TrimSpace(*requestData.CityName), strings.TrimSpace(state))
		if err != nil {
			log.Printf("error upserting city: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save city"})
		}
		cityID = &id
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE items
		SET title = $1, description = $2, type = $3, price = $4, trade_interest = $5,
		    category_id = $6, city_id = $7, status = $8, listing_state = $9, updated_at = now()
		WHERE id = $10 AND user_id = $11
	`, current.Title, current.Description, current.Type, current.Price, current.TradeInterest,
		categoryID, cityID, current.Status, current.ListingState, itemUUID, userUUID)

	if err != nil {
		log.Printf("error updating item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update item"})
	}

	item, err := loadItem(ctx, itemUUID)
	if err != nil {
		log.Printf("error reloading item: %v", err)
		return c.JSON(fiber.Map{"success": true})
	}

	return c.JSON(item)
}

// DeleteItem removes a listing and its stored photos; only the owner may do this
func (s *ItemService) DeleteItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	itemID := c.Params("id")

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

	var exists bool
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM items WHERE id = $1 AND user_id = $2)
	`, itemUUID, userUUID).Scan(&exists)

	if err != nil {
		log.Printf("error checking item ownership: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check item"})
	}

	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	}

	photos, err := loadPhotos(ctx, itemUUID)
	if err != nil {
		log.Printf("error loading photos before delete: %v", err)
	}

	_, err = db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1 AND user_id = $2`, itemUUID, userUUID)
	if err != nil {
		log.Printf("error deleting item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete item"})
	}

	// Stored photos are cleaned up best-effort after the row is gone
	for _, photo := range photos {
		if err := s.cloudinaryService.DeletePhoto(ctx, photo.PublicID); err != nil {
			log.Printf("error removing stored photo %s: %v", photo.PublicID, err)
		}
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// AddPhotos appends photos to an existing item
func (s *ItemService) AddPhotos(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	itemID := c.Params("id")

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

	var exists bool
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM items WHERE id = $1 AND user_id = $2)
	`, itemUUID, userUUID).Scan(&exists)

	if err != nil {
		log.Printf("error checking item ownership: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check item"})
	}

	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid multipart form"})
	}

	files := form.File["photos"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No photos in request"})
	}

	var maxPosition int
	err = db.Pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(position), 0) FROM item_photos WHERE item_id = $1
	`, itemUUID).Scan(&maxPosition)

	if err != nil {
		log.Printf("error fetching photo position: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save photos"})
	}

	// Uploads first, then rows, on a fresh query deadline
	uploaded, err := uploadAll(c.Context(), s.cloudinaryService, files)
	if err != nil {
		log.Printf("error uploading photo: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload photo"})
	}

	insertCtx, insertCancel := db.GetContext()
	defer insertCancel()

	added := []models.ItemPhoto{}
	for i, up := range uploaded {
		photo := models.ItemPhoto{
			ID:       uuid.New(),
			ItemID:   itemUUID,
			URL:      up.url,
			PublicID: up.publicID,
			Position: maxPosition + i + 1,
		}

		_, err = db.Pool.Exec(insertCtx, `
			INSERT INTO item_photos (id, item_id, url, public_id, position)
			VALUES ($1, $2, $3, $4, $5)
		`, photo.ID, photo.ItemID, photo.URL, photo.PublicID, photo.Position)

		if err != nil {
			log.Printf("error inserting photo: %v", err)
			discardUploads(s.cloudinaryService, uploaded[i:])
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save photo"})
		}

		added = append(added, photo)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"photos":  added,
	})
}

// DeletePhoto removes one photo; only the item owner may do this
func (s *ItemService) DeletePhoto(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	photoID := c.Params("photoId")

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	photoUUID, err := uuid.Parse(photoID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid photo ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var publicID string
	err = db.Pool.QueryRow(ctx, `
		SELECT p.public_id
		FROM item_photos p
		JOIN items i ON i.id = p.item_id
		WHERE p.id = $1 AND i.user_id = $2
	`, photoUUID, userUUID).Scan(&publicID)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
		}
		log.Printf("error fetching photo: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch photo"})
	}

	_, err = db.Pool.Exec(ctx, `DELETE FROM item_photos WHERE id = $1`, photoUUID)
	if err != nil {
		log.Printf("error deleting photo: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete photo"})
	}

	if err := s.cloudinaryService.DeletePhoto(ctx, publicID); err != nil {
		log.Printf("error removing stored photo %s: %v", publicID, err)
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// formValue returns the first value for a multipart field
func formValue(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

// normalizeType maps the form spelling to the canonical listing type
func normalizeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "sell", "venda":
		return models.TypeSell
	case "donation", "doacao", "doação":
		return models.TypeDonation
	case "trade", "troca":
		return models.TypeTrade
	}
	return strings.TrimSpace(t)
}

// resolveCategory accepts a category ID, slug or name
func resolveCategory(ctx context.Context, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		var exists bool
		if err := db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists); err != nil {
			return uuid.Nil, err
		}
		if !exists {
			return uuid.Nil, pgx.ErrNoRows
		}
		return id, nil
	}

	var id uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM categories WHERE slug = $1 OR name = $1
	`, ref).Scan(&id)
	return id, err
}

// upsertCity finds or creates a city row and returns its ID
func upsertCity(ctx context.Context, name, state string) (uuid.UUID, error) {
	var cityID uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM cities WHERE name = $1 AND state = $2
	`, name, state).Scan(&cityID)

	if err == nil {
		return cityID, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, err
	}

	cityID = uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO cities (id, name, state) VALUES ($1, $2, $3)
	`, cityID, name, state)

	return cityID, err
}
