package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skaufmann/reading-challenge/internal/auth"
	"github.com/skaufmann/reading-challenge/internal/config"
	"github.com/skaufmann/reading-challenge/internal/covers"
	"github.com/skaufmann/reading-challenge/internal/database"
	"github.com/skaufmann/reading-challenge/internal/database/books"
	"github.com/skaufmann/reading-challenge/internal/database/reviews"
	http_controllers "github.com/skaufmann/reading-challenge/internal/http"
	"github.com/skaufmann/reading-challenge/internal/importers"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Reading Challenge v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	reviewRepo := reviews.NewRepository(db.DB)

	// Seed the catalog from the reading list CSV on first start
	if file, err := os.Open(cfg.Import.CSVPath); err == nil {
		result, importErr := importers.ImportBooks(bookRepo, file, false)
		file.Close()
		if importErr != nil {
			log.Printf("WARNING: CSV import failed: %v", importErr)
		} else if !result.AlreadyLoaded {
			log.Printf("Imported %d books from %s", result.Imported, cfg.Import.CSVPath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARNING: could not open %s: %v", cfg.Import.CSVPath, err)
	}

	// Cover resolver over the local cover directory and mapping file
	resolver, err := covers.NewResolver(cfg.Covers.Dir, cfg.Covers.MappingPath)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover resolver: %v", err)
		resolver = nil
	} else {
		log.Printf("Cover resolver initialized at %s", cfg.Covers.Dir)
	}

	// Initialize authentication
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	authService = auth.NewService(cfg.Auth)
	if authService.IsConfigured() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(sessionManager)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}
	} else {
		log.Printf("WARNING: No reader password hashes configured. Run '%s hash-password' and "+
			"set SILAS_PASSWORD_HASH and NADINE_PASSWORD_HASH; login is disabled until then.", os.Args[0])
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Catalog:        bookRepo,
		Reviews:        reviewRepo,
		Database:       db,
		CoverResolver:  resolver,
		CoverStore:     bookRepo,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, nil)
}
