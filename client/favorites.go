package client

import (
	"context"
	"net/http"
)

// Favorites returns the current user's favorites with the items embedded
func (c *Client) Favorites(ctx context.Context) ([]Favorite, error) {
	var favorites []Favorite
	err := c.do(ctx, http.MethodGet, "/favorites/", nil, &favorites)
	return favorites, err
}

// AddFavorite marks an item as favorited
func (c *Client) AddFavorite(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodPost, "/favorites/add/", map[string]string{"item_id": itemID}, nil)
}

// RemoveFavorite unmarks an item. The server answers 404 for an item that
// was never favorited; callers that want idempotent semantics check with
// IsNotFound.
func (c *Client) RemoveFavorite(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/favorites/remove/"+itemID+"/", nil, nil)
}
