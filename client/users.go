package client

import (
	"context"
	"net/http"
)

// Register creates a new account
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	return c.do(ctx, http.MethodPost, "/users/register/", body, nil)
}

// Login exchanges credentials for a token pair, stores it and reloads the
// session
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/users/login/", body, &pair); err != nil {
		return err
	}

	if err := c.tokens.SetPair(pair.Access, pair.Refresh); err != nil {
		return err
	}
	c.session.Reload()
	return nil
}

// RefreshSession exchanges the stored refresh token for a new pair
func (c *Client) RefreshSession(ctx context.Context) error {
	refresh := c.tokens.Refresh()
	if refresh == "" {
		return ErrNotAuthenticated
	}

	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/users/login/refresh/", map[string]string{"refresh": refresh}, &pair); err != nil {
		return err
	}

	if err := c.tokens.SetPair(pair.Access, pair.Refresh); err != nil {
		return err
	}
	c.session.Reload()
	return nil
}

// Logout clears the stored credential pair
func (c *Client) Logout() error {
	if err := c.tokens.Clear(); err != nil {
		return err
	}
	c.session.Reload()
	return nil
}

// Profile returns the current user's profile
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodGet, "/users/profile/", nil, &profile)
	return profile, err
}

// ProfileUpdate holds the mutable profile fields; nil fields are untouched
type ProfileUpdate struct {
	PhotoURL             *string `json:"photo_url,omitempty"`
	Bio                  *string `json:"bio,omitempty"`
	CityName             *string `json:"city_name,omitempty"`
	CityState            *string `json:"city_state,omitempty"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
}

// UpdateProfile updates the profile and returns the new state
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodPut, "/users/profile/update/", update, &profile)
	return profile, err
}
