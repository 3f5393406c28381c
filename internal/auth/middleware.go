package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skaufmann/reading-challenge/internal/entities"
)

// Context keys for the authenticated reader
const (
	ContextKeyReader = "auth_reader"
)

// Middleware guards mutating routes behind a reader session. The read
// path (listings, detail pages, statistics) is public; only mutations
// need a logged-in reader.
type Middleware struct {
	sessionManager *SessionManager
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(sessionManager *SessionManager) *Middleware {
	return &Middleware{sessionManager: sessionManager}
}

// Handler returns a Gin middleware that resolves the session reader into
// the request context. It never rejects: route groups decide whether a
// reader is required via RequireReader.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.sessionManager != nil {
			if reader := m.sessionManager.GetReader(c.Request); reader != "" {
				c.Set(ContextKeyReader, reader)
			}
		}
		c.Next()
	}
}

// RequireReader returns a middleware that rejects unauthenticated
// requests: 401 JSON for API calls, a login redirect otherwise.
func (m *Middleware) RequireReader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetReader(c) != "" {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Redirect(http.StatusFound, "/login?next="+c.Request.URL.Path)
		c.Abort()
	}
}

// isAPIRequest determines if this is an API request vs web browser request.
func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// GetReader retrieves the authenticated reader from the Gin context.
// Returns "" if nobody is logged in.
func GetReader(c *gin.Context) entities.Reader {
	if v, exists := c.Get(ContextKeyReader); exists {
		if reader, ok := v.(entities.Reader); ok {
			return reader
		}
	}
	return ""
}

// IsAuthenticated returns true if the request carries a reader session.
func IsAuthenticated(c *gin.Context) bool {
	return GetReader(c) != ""
}
