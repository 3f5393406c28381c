package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skaufmann/reading-challenge/internal/covers"
)

// CoversController exposes maintenance operations for the cover cache.
type CoversController struct {
	resolver *covers.Resolver
	store    covers.BookStore
}

func NewCoversController(resolver *covers.Resolver, store covers.BookStore) *CoversController {
	return &CoversController{
		resolver: resolver,
		store:    store,
	}
}

// SyncCovers re-resolves every book's cover and persists the resulting URLs
// on the book rows. No network requests are made; only the local cover
// directory and mapping file are consulted.
// POST /api/covers/sync
func (cc *CoversController) SyncCovers(c *gin.Context) {
	result, err := cc.resolver.SyncDatabase(cc.store)
	if err != nil {
		respondInternalError(c, err, "sync covers")
		return
	}
	c.JSON(http.StatusOK, result)
}
