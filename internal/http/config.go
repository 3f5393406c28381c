package http

import (
	"github.com/skaufmann/reading-challenge/internal/auth"
	"github.com/skaufmann/reading-challenge/internal/covers"
	"github.com/skaufmann/reading-challenge/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Catalog  CatalogStore
	Reviews  ReviewStore
	Database *database.Database

	// Cover resolution
	CoverResolver *covers.Resolver
	CoverStore    covers.BookStore

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// UI paths
	StaticPath string

	// Application info
	Version string
}
