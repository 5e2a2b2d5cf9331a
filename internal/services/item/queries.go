package item

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/giveme-app/giveme-api/internal/db"
	"github.com/giveme-app/giveme-api/internal/models"
)

// scanItems reads item rows (in itemSelect column order) and attaches photos
func scanItems(ctx context.Context, rows pgx.Rows) ([]models.Item, error) {
	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		photos, err := loadPhotos(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Photos = photos
	}

	return items, nil
}

func scanItem(row pgx.Row) (models.Item, error) {
	var item models.Item
	var description, tradeInterest *string
	var price *float64
	var category models.Category
	var cityID *uuid.UUID
	var cityName, cityState *string

	err := row.Scan(
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
		&cityID,
		&cityName,
		&cityState,
	)
	if err != nil {
		return models.Item{}, err
	}

	if description != nil {
		item.Description = *description
	}
	item.Price = price
	item.TradeInterest = tradeInterest
	item.Category = &category
	item.CategoryName = category.Name

	if cityID != nil && cityName != nil {
		city := models.City{ID: *cityID, Name: *cityName}
		if cityState != nil {
			city.State = *cityState
		}
		item.City = &city
	}

	return item, nil
}

// loadItem fetches a single item with category, city and photos
func loadItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	row := db.Pool.QueryRow(ctx, itemSelect+` WHERE i.id = $1`, itemID)

	item, err := scanItem(row)
	if err != nil {
		return nil, err
	}

	item.Photos, err = loadPhotos(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// loadOwnedItem fetches an item only if it belongs to the user
func loadOwnedItem(ctx context.Context, itemID, userID uuid.UUID) (*models.Item, error) {
	row := db.Pool.QueryRow(ctx, itemSelect+` WHERE i.id = $1 AND i.user_id = $2`, itemID, userID)

	item, err := scanItem(row)
	if err != nil {
		return nil, err
	}

	item.Photos, err = loadPhotos(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// loadPhotos returns an item's photos ordered by position
func loadPhotos(ctx context.Context, itemID uuid.UUID) ([]models.ItemPhoto, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, item_id, url, public_id, position, created_at
		FROM item_photos
		WHERE item_id = $1
		ORDER BY position ASC
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []models.ItemPhoto{}
	for rows.Next() {
		var photo models.ItemPhoto
		if err := rows.Scan(
			&photo.ID,
			&photo.ItemID,
			&photo.URL,
			&photo.PublicID,
			&photo.Position,
			&photo.CreatedAt,
		); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}

	return photos, rows.Err()
}
