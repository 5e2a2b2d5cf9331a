package client

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session derives the current identity from the stored access credential.
// The token is decoded without signature verification; the server is the
// one that verifies, the client only needs the claims.
type Session struct {
	mu     sync.RWMutex
	tokens TokenStore

	userID string
	expiry time.Time
}

// NewSession creates a session reader over the given token store
func NewSession(tokens TokenStore) *Session {
	s := &Session{tokens: tokens}
	s.Reload()
	return s
}

// Reload re-reads the stored credential. Callers trigger this after login,
// logout or any external change to the store, instead of re-decoding ad hoc
// all over the codebase.
func (s *Session) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = ""
	s.expiry = time.Time{}

	tokenString := s.tokens.Access()
	if tokenString == "" {
		return
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}

	if userID, _ := claims["user_id"].(string); userID != "" {
		s.userID = userID
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.expiry = exp.Time
	}
}

// UserID returns the identifier decoded from the access token, empty when
// not authenticated
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// IsAuthenticated reports whether a non-expired credential is present
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.userID == "" {
		return false
	}
	if !s.expiry.IsZero() && time.Now().After(s.expiry) {
		return false
	}
	return true
}
