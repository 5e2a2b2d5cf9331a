package user

import (
	"github.com/gofiber/fiber/v3"

	"github.com/giveme-app/giveme-api/internal/middleware"
)

// SetupRoutes registers the user API routes
func (s *UserService) SetupRoutes(app *fiber.App) {
	app.Post("/users/register/", s.Register)
	app.Post("/users/login/", s.Login)
	app.Post("/users/login/refresh/", s.Refresh)

	// Protected routes
	api := app.Group("/users")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/profile/", s.GetProfile)

	// The web client reads the current profile from both paths
	api.Get("/profile/update/", s.GetProfile)
	api.Put("/profile/update/", s.UpdateProfile)
}
