package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// Items returns all active listings
func (c *Client) Items(ctx context.Context) ([]Item, error) {
	var items []Item
	err := c.do(ctx, http.MethodGet, "/items/", nil, &items)
	return items, err
}

// Item returns one listing by ID
func (c *Client) Item(ctx context.Context, id string) (Item, error) {
	var item Item
	err := c.do(ctx, http.MethodGet, "/items/"+id+"/", nil, &item)
	return item, err
}

// MyItems returns the current user's listings, drafts included
func (c *Client) MyItems(ctx context.Context) ([]Item, error) {
	var items []Item
	err := c.do(ctx, http.MethodGet, "/items/my-items/", nil, &items)
	return items, err
}

// Categories returns the static category reference data
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := c.do(ctx, http.MethodGet, "/categories/", nil, &categories)
	return categories, err
}

// PhotoUpload is one photo to attach to a listing
type PhotoUpload struct {
	FileName string
	Content  io.Reader
}

// CreateItemInput is the multipart payload for creating a listing
type CreateItemInput struct {
	Title         string
	Description   string
	Category      string
	Status        string
	Type          string
	ListingState  string
	Price         *float64
	TradeInterest string
	CityName      string
	CityState     string
	Photos        []PhotoUpload
}

// CreateItem creates a listing with its photos in one multipart request
func (c *Client) CreateItem(ctx context.Context, input CreateItemInput) (Item, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	price := ""
	if input.Price != nil {
		price = strconv.FormatFloat(*input.Price, 'f', 2, 64)
	}
	cityState := ""
	if input.CityName != "" {
		cityState = input.CityState
	}

	// Fixed field order, so identical inputs encode identically
	fields := []struct{ key, value string }{
		{"title", input.Title},
		{"description", input.Description},
		{"category", input.Category},
		{"status", input.Status},
		{"type", input.Type},
		{"listing_state", input.ListingState},
		{"price", price},
		{"trade_interest", input.TradeInterest},
		{"city_name", input.CityName},
		{"city_state", cityState},
	}

	for _, field := range fields {
		if field.value == "" {
			continue
		}
		if err := writer.WriteField(field.key, field.value); err != nil {
			return Item{}, fmt.Errorf("encoding form field %s: %w", field.key, err)
		}
	}

	for _, photo := range input.Photos {
		part, err := writer.CreateFormFile("photos", photo.FileName)
		if err != nil {
			return Item{}, fmt.Errorf("encoding photo %s: %w", photo.FileName, err)
		}
		if _, err := io.Copy(part, photo.Content); err != nil {
			return Item{}, fmt.Errorf("reading photo %s: %w", photo.FileName, err)
		}
	}

	if err := writer.Close(); err != nil {
		return Item{}, err
	}

	var item Item
	err := c.doMultipart(ctx, http.MethodPost, "/items/create/", &buf, writer.FormDataContentType(), &item)
	return item, err
}

// ItemUpdate holds the mutable listing fields; nil fields are untouched
type ItemUpdate struct {
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Type          *string  `json:"type,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	TradeInterest *string  `json:"trade_interest,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Status        *string  `json:"status,omitempty"`
	ListingState  *string  `json:"listing_state,omitempty"`
	CityName      *string  `json:"city_name,omitempty"`
	CityState     *string  `json:"city_state,omitempty"`
}

// UpdateItem updates a listing the current user owns
func (c *Client) UpdateItem(ctx context.Context, id string, update ItemUpdate) (Item, error) {
	var item Item
	err := c.do(ctx, http.MethodPut, "/items/update/"+id+"/", update, &item)
	return item, err
}

// DeleteItem removes a listing the current user owns
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/items/delete/"+id+"/", nil, nil)
}

// AddPhotos appends photos to an existing listing
func (c *Client) AddPhotos(ctx context.Context, itemID string, photos []PhotoUpload) ([]Photo, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, photo := range photos {
		part, err := writer.CreateFormFile("photos", photo.FileName)
		if err != nil {
			return nil, fmt.Errorf("encoding photo %s: %w", photo.FileName, err)
		}
		if _, err := io.Copy(part, photo.Content); err != nil {
			return nil, fmt.Errorf("reading photo %s: %w", photo.FileName, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	var response struct {
		Photos []Photo `json:"photos"`
	}
	err := c.doMultipart(ctx, http.MethodPost, "/items/"+itemID+"/photos/", &buf, writer.FormDataContentType(), &response)
	return response.Photos, err
}

// DeletePhoto removes one photo from a listing the current user owns
func (c *Client) DeletePhoto(ctx context.Context, photoID string) error {
	return c.do(ctx, http.MethodDelete, "/items/photos/"+photoID+"/", nil, nil)
}
