package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePairAndExtract(t *testing.T) {
	service := NewJWTService("test-secret")

	pair, err := service.GeneratePair("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	userID, err := service.ExtractUserID(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	userID, err = service.ExtractUserIDFromRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenTypeIsEnforced(t *testing.T) {
	service := NewJWTService("test-secret")

	pair, err := service.GeneratePair("user-123")
	require.NoError(t, err)

	_, err = service.ExtractUserID(pair.Refresh)
	assert.ErrorIs(t, err, ErrWrongTokenUse)

	_, err = service.ExtractUserIDFromRefresh(pair.Access)
	assert.ErrorIs(t, err, ErrWrongTokenUse)
}

func TestWrongSecretIsRejected(t *testing.T) {
	pair, err := NewJWTService("secret-a").GeneratePair("user-123")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ExtractUserID(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenIsRejected(t *testing.T) {
	service := NewJWTService("test-secret")

	_, err := service.ExtractUserID("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ExtractUserID("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
