package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 1 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrWrongTokenUse = errors.New("token used for the wrong purpose")
)

// TokenPair is what the login endpoint hands back to the client
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// JWTService creates and validates JWT tokens
type JWTService struct {
	secretKey string
}

// NewJWTService creates a new JWTService instance
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: secretKey}
}

// GeneratePair creates an access/refresh token pair for the user
func (s *JWTService) GeneratePair(userID string) (TokenPair, error) {
	access, err := s.generate(userID, "access", accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.generate(userID, "refresh", refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *JWTService) generate(userID, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"token_type": tokenType,
		"exp":        time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ExtractUserID validates an access token and returns the user ID claim
func (s *JWTService) ExtractUserID(tokenString string) (string, error) {
	return s.extract(tokenString, "access")
}

// ExtractUserIDFromRefresh validates a refresh token and returns the user ID claim
func (s *JWTService) ExtractUserIDFromRefresh(tokenString string) (string, error) {
	return s.extract(tokenString, "refresh")
}

func (s *JWTService) extract(tokenString, wantType string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.secretKey), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	if tokenType, _ := claims["token_type"].(string); tokenType != wantType {
		return "", ErrWrongTokenUse
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}
