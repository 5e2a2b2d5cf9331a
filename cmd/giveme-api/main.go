package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/giveme-app/giveme-api/internal/config"
	"github.com/giveme-app/giveme-api/internal/db"
	"github.com/giveme-app/giveme-api/internal/push"
	"github.com/giveme-app/giveme-api/internal/services/category"
	"github.com/giveme-app/giveme-api/internal/services/chat"
	"github.com/giveme-app/giveme-api/internal/services/cloudinary"
	"github.com/giveme-app/giveme-api/internal/services/favorite"
	"github.com/giveme-app/giveme-api/internal/services/item"
	"github.com/giveme-app/giveme-api/internal/services/user"
)

func main() {
	cfg := config.LoadConfig()

	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	app := fiber.New(fiber.Config{
		AppName:      "Give.me API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	userService := user.NewUserService(cfg)

	cloudinaryService, err := cloudinary.NewCloudinaryService(cfg)
	if err != nil {
		log.Fatalf("❌ failed to initialize cloudinary: %v", err)
	}

	hub := push.NewHub(chat.IsParticipant)
	defer hub.Shutdown()

	userService.SetupRoutes(app)
	category.NewCategoryService(cfg).SetupRoutes(app)
	item.NewItemService(cfg, cloudinaryService).SetupRoutes(app)
	favorite.NewFavoriteService(cfg).SetupRoutes(app)
	chat.NewChatService(cfg, hub).SetupRoutes(app)

	// The realtime gateway upgrades WebSocket connections on its own listener
	pushServer := push.NewServer(hub, userService.GetJWTService())
	go func() {
		if err := pushServer.Listen(cfg.PushListenAddr); err != nil {
			log.Fatalf("❌ realtime gateway failed: %v", err)
		}
	}()

	log.Printf("✅ Give.me API listening on %s", cfg.ListenAddr)
	log.Fatal(app.Listen(cfg.ListenAddr))
}

// errorHandler converts unhandled errors into JSON responses
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
