package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// sanitizeRedirectPath returns a safe local redirect path, defaulting to
// "/" to prevent open redirects.
func sanitizeRedirectPath(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") ||
		strings.HasPrefix(path, "//") ||
		strings.Contains(path, "://") ||
		strings.Contains(path, "\\") {
		return "/"
	}
	return path
}

// Controller handles login and logout for the two readers.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
}

// NewController creates a new authentication controller.
func NewController(service *Service, sessionManager *SessionManager) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout) // Support GET for simple logout links
	router.GET("/api/session", ac.Session)
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"-"`
}

// Login handles a credentials submission, form-encoded or JSON.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	reader, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, reader); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	if isAPIRequest(c) {
		c.JSON(http.StatusOK, gin.H{
			"reader": reader,
			"name":   reader.DisplayName(),
		})
		return
	}
	c.Redirect(http.StatusFound, sanitizeRedirectPath(req.Next))
}

// Logout destroys the session.
func (ac *Controller) Logout(c *gin.Context) {
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to destroy session"})
		return
	}

	if isAPIRequest(c) {
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Session reports the currently authenticated reader, if any. The CSRF
// token rides along in a response header on both branches, so a client
// can fetch it here before logging in.
func (ac *Controller) Session(c *gin.Context) {
	if token := GetCSRFToken(c); token != "" {
		c.Header(CSRFTokenHeader, token)
	}

	reader := ac.sessionManager.GetReader(c.Request)
	if reader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reader": reader,
		"name":   reader.DisplayName(),
	})
}
