package http

import (
	"github.com/gin-gonic/gin"

	"github.com/skaufmann/reading-challenge/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Serve static files (cover images, frontend assets)
	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	// Login/logout/session routes
	if cfg.AuthService != nil && cfg.AuthService.IsConfigured() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		authController.RegisterRoutes(router)
	}

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Catalog, cfg.Reviews, cfg.CoverResolver)
	reviewsController := NewReviewsController(cfg.Catalog, cfg.Reviews)
	var coversController *CoversController
	if cfg.CoverResolver != nil && cfg.CoverStore != nil {
		coversController = NewCoversController(cfg.CoverResolver, cfg.CoverStore)
	}

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Catalog read endpoints are public
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.GET("/api/authors", booksController.GetAuthors)
	router.GET("/api/stats", booksController.GetStats)

	// Mutations require a logged-in reader
	protected := router.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireReader())
	}
	protected.POST("/api/books/:id/read", reviewsController.MarkRead)
	protected.POST("/api/books/:id/reviews", reviewsController.AddReview)
	if coversController != nil {
		protected.POST("/api/covers/sync", coversController.SyncCovers)
	}

	return router
}
