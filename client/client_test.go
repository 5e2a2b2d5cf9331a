package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayAttachesBearerCredential(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	c := New(server.URL, tokens)

	_, err := c.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no header without a stored credential")

	require.NoError(t, tokens.SetPair("the-access-token", "the-refresh-token"))
	_, err = c.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer the-access-token", gotAuth)
}

func TestGatewayDecodesErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "item not found"}`))
	}))
	defer server.Close()

	c := New(server.URL, NewMemoryTokenStore())

	_, err := c.Item(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "item not found", apiErr.Detail)
}

func TestGatewayTreats401AsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "authorization required"}`))
	}))
	defer server.Close()

	c := New(server.URL, NewMemoryTokenStore())

	_, err := c.Favorites(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
}

func TestLoginStoresPairAndReloadsSession(t *testing.T) {
	pair := testTokenPair(t, "7b0f6f3c-5f43-4f3e-9b2e-1f6a1a1a1a1a")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/login/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access": "` + pair.Access + `", "refresh": "` + pair.Refresh + `"}`))
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	c := New(server.URL, tokens)
	assert.False(t, c.Session().IsAuthenticated())

	require.NoError(t, c.Login(context.Background(), "maria", "s3cret"))

	assert.Equal(t, pair.Access, tokens.Access())
	assert.True(t, c.Session().IsAuthenticated())
	assert.Equal(t, "7b0f6f3c-5f43-4f3e-9b2e-1f6a1a1a1a1a", c.Session().UserID())

	require.NoError(t, c.Logout())
	assert.False(t, c.Session().IsAuthenticated())
	assert.Empty(t, tokens.Access())
}
