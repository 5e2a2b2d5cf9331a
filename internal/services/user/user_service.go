package user

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/giveme-app/giveme-api/internal/config"
	"github.com/giveme-app/giveme-api/internal/db"
	"github.com/giveme-app/giveme-api/internal/models"
	"github.com/giveme-app/giveme-api/internal/utils"
)

// UserService handles registration, login and profiles
type UserService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewUserService creates a new UserService instance
func NewUserService(cfg *config.Config) *UserService {
	return &UserService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService exposes the token service for middleware wiring
func (s *UserService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// Register creates a new account with its profile
func (s *UserService) Register(c fiber.Ctx) error {
	var requestData struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	requestData.Username = strings.TrimSpace(requestData.Username)
	requestData.Email = strings.TrimSpace(requestData.Email)

	if requestData.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username is required"})
	}
	if len(requestData.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password must be at least 6 characters"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)
	`, requestData.Username).Scan(&exists)

	if err != nil {
		log.Printf("error checking username: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check username"})
	}

	if exists {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username is already taken"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(requestData.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("error starting transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	defer tx.Rollback(ctx)

	userID := uuid.New()
	chatUserID := uuid.New()

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, userID, requestData.Username, requestData.Email, string(hash))

	if err != nil {
		log.Printf("error inserting user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_profiles (user_id, chat_user_id, notifications_enabled)
		VALUES ($1, $2, true)
	`, userID, chatUserID)

	if err != nil {
		log.Printf("error inserting profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("error committing transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      userID,
	})
}

// Login verifies credentials and returns an access/refresh token pair
func (s *UserService) Login(c fiber.Ctx) error {
	var requestData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var userID uuid.UUID
	var passwordHash string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, password_hash FROM users WHERE username = $1
	`, requestData.Username).Scan(&userID, &passwordHash)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
		}
		log.Printf("error fetching user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log in"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(requestData.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
	}

	pair, err := s.jwtService.GeneratePair(userID.String())
	if err != nil {
		log.Printf("error generating tokens: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate tokens"})
	}

	return c.JSON(pair)
}

// Refresh exchanges a refresh token for a new token pair
func (s *UserService) Refresh(c fiber.Ctx) error {
	var requestData struct {
		Refresh string `json:"refresh"`
	}

	if err := c.Bind().Body(&requestData); err != nil || requestData.Refresh == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Refresh token is required"})
	}

	userID, err := s.jwtService.ExtractUserIDFromRefresh(requestData.Refresh)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired refresh token"})
	}

	pair, err := s.jwtService.GeneratePair(userID)
	if err != nil {
		log.Printf("error generating tokens: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate tokens"})
	}

	return c.JSON(pair)
}

// GetProfile returns the current user's profile
func (s *UserService) GetProfile(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := loadProfile(ctx, userUUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		log.Printf("error fetching profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(profile)
}

// UpdateProfile updates the mutable profile fields
func (s *UserService) UpdateProfile(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var requestData struct {
		PhotoURL             *string `json:"photo_url"`
		Bio                  *string `json:"bio"`
		CityName             *string `json:"city_name"`
		CityState            *string `json:"city_state"`
		NotificationsEnabled *bool   `json:"notifications_enabled"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if requestData.PhotoURL != nil {
		if _, err := db.Pool.Exec(ctx, `UPDATE user_profiles SET photo_url = $1 WHERE user_id = $2`, *requestData.PhotoURL, userUUID); err != nil {
			log.Printf("error updating photo: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
		}
	}

	if requestData.Bio != nil {
		if _, err := db.Pool.Exec(ctx, `UPDATE user_profiles SET bio = $1 WHERE user_id = $2`, *requestData.Bio, userUUID); err != nil {
			log.Printf("error updating bio: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
		}
	}

	if requestData.NotificationsEnabled != nil {
		if _, err := db.Pool.Exec(ctx, `UPDATE user_profiles SET notifications_enabled = $1 WHERE user_id = $2`, *requestData.NotificationsEnabled, userUUID); err != nil {
			log.Printf("error updating notifications flag: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
		}
	}

	if requestData.CityName != nil && *requestData.CityName != "" {
		state := ""
		if requestData.CityState != nil {
			state = *requestData.CityState
		}

		cityID, err := upsertCity(ctx, *requestData.CityName, state)
		if err != nil {
			log.Printf("error upserting city: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
		}

		if _, err := db.Pool.Exec(ctx, `UPDATE user_profiles SET city_id = $1 WHERE user_id = $2`, cityID, userUUID); err != nil {
			log.Printf("error updating city: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
		}
	}

	profile, err := loadProfile(ctx, userUUID)
	if err != nil {
		log.Printf("error reloading profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(profile)
}

// loadProfile fetches the joined user+profile row
func loadProfile(ctx context.Context, userUUID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	var photoURL, bio *string
	var cityID *uuid.UUID

	err := db.Pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.email, p.photo_url, p.bio, p.city_id, p.notifications_enabled, p.chat_user_id
		FROM users u
		JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`, userUUID).Scan(
		&profile.UserID,
		&profile.Username,
		&profile.Email,
		&photoURL,
		&bio,
		&cityID,
		&profile.NotificationsEnabled,
		&profile.ChatUserID,
	)
	if err != nil {
		return nil, err
	}

	if photoURL != nil {
		profile.PhotoURL = *photoURL
	}
	if bio != nil {
		profile.Bio = *bio
	}

	if cityID != nil {
		var city models.City
		var state *string
		err = db.Pool.QueryRow(ctx, `
			SELECT id, name, state FROM cities WHERE id = $1
		`, *cityID).Scan(&city.ID, &city.Name, &state)
		if err == nil {
			if state != nil {
				city.State = *state
			}
			profile.City = &city
		}
	}

	return &profile, nil
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
