package client

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenPair mints a signed pair for userID; the session reader only
// decodes claims, so any signing key works
func testTokenPair(t *testing.T, userID string) TokenPair {
	t.Helper()
	sign := func(tokenType string, ttl time.Duration) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":    userID,
			"token_type": tokenType,
			"exp":        time.Now().Add(ttl).Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return signed
	}
	return TokenPair{
		Access:  sign("access", time.Hour),
		Refresh: sign("refresh", 7*24*time.Hour),
	}
}

func expiredToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionDecodesStoredCredential(t *testing.T) {
	tokens := NewMemoryTokenStore()
	pair := testTokenPair(t, "user-123")
	require.NoError(t, tokens.SetPair(pair.Access, pair.Refresh))

	session := NewSession(tokens)
	assert.Equal(t, "user-123", session.UserID())
	assert.True(t, session.IsAuthenticated())
}

func TestSessionWithoutCredential(t *testing.T) {
	session := NewSession(NewMemoryTokenStore())
	assert.Empty(t, session.UserID())
	assert.False(t, session.IsAuthenticated())
}

func TestSessionExpiredCredential(t *testing.T) {
	tokens := NewMemoryTokenStore()
	require.NoError(t, tokens.SetPair(expiredToken(t, "user-123"), ""))

	session := NewSession(tokens)
	assert.Equal(t, "user-123", session.UserID())
	assert.False(t, session.IsAuthenticated())
}

func TestSessionReloadTracksStoreChanges(t *testing.T) {
	tokens := NewMemoryTokenStore()
	session := NewSession(tokens)
	assert.False(t, session.IsAuthenticated())

	pair := testTokenPair(t, "user-123")
	require.NoError(t, tokens.SetPair(pair.Access, pair.Refresh))
	session.Reload()
	assert.True(t, session.IsAuthenticated())

	require.NoError(t, tokens.Clear())
	session.Reload()
	assert.False(t, session.IsAuthenticated())
}

func TestSessionGarbageToken(t *testing.T) {
	tokens := NewMemoryTokenStore()
	require.NoError(t, tokens.SetPair("not-a-jwt", ""))

	session := NewSession(tokens)
	assert.Empty(t, session.UserID())
	assert.False(t, session.IsAuthenticated())
}
