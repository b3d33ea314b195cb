package main

import (
	"os"

	"bloom/auth"
	"bloom/config"
	"bloom/db"
	"bloom/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db.InitDatabase(cfg)

	// Create uploads directory if it doesn't exist
	if _, err := os.Stat(cfg.UploadDir); os.IsNotExist(err) {
		os.Mkdir(cfg.UploadDir, 0755)
	}

	if err := auth.SeedAdminUser(db.DB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatal("Failed to seed admin user: ", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Serve static files
	app.Static("/uploads", "./"+cfg.UploadDir)

	// Setup routes
	routes.SetupRoutes(app, cfg)

	// Start server
	logrus.Fatal(app.Listen(":" + cfg.Port))
}
