package routes

import (
	"bloom/auth"
	"bloom/config"
	"bloom/db"
	"bloom/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// uploadDir is where multipart uploads land; set once from config in SetupRoutes.
var uploadDir = "uploads"

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

type BundleListResponse struct {
	Bundles []models.Bundle `json:"bundles"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

func SetupRoutes(app *fiber.App, cfg *config.Config) {
	uploadDir = cfg.UploadDir

	resolver := &auth.Resolver{
		Disabled: !cfg.RequireAuth,
		Secret:   cfg.JWTSecret,
		Sessions: &auth.GormSessionStore{DB: db.DB},
	}
	requireAuth := resolver.RequireAuth()

	startEventFeed()

	// Admin event feed
	app.Get("/ws", eventFeedHandler)
	// Image upload route
	app.Post("/upload", requireAuth, uploadImage)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", login)
	authRoutes.Post("/logout", requireAuth, logout)
	authRoutes.Get("/me", requireAuth, me)

	// Product routes
	products := api.Group("/products")
	products.Get("/", getAllProducts)
	products.Get("/:id", getProduct)
	products.Post("/", requireAuth, createProduct)
	products.Put("/:id", requireAuth, updateProduct)
	products.Delete("/:id", requireAuth, deleteProduct)

	// Bundle routes
	bundles := api.Group("/bundles")
	bundles.Get("/", getAllBundles)
	bundles.Get("/:id", getBundle)
	bundles.Post("/", requireAuth, createBundle)
	bundles.Put("/:id", requireAuth, updateBundle)
	bundles.Delete("/:id", requireAuth, deleteBundle)

	// Order routes (read and search only)
	orders := api.Group("/orders")
	orders.Get("/search", searchOrders)
	orders.Get("/", getAllOrders)
	orders.Get("/:id", getOrder)
}
