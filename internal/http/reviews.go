package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skaufmann/reading-challenge/internal/auth"
	"github.com/skaufmann/reading-challenge/internal/database/books"
	"github.com/skaufmann/reading-challenge/internal/database/reviews"
	"github.com/skaufmann/reading-challenge/internal/entities"
)

type ReviewsController struct {
	catalog CatalogStore
	reviews ReviewStore
}

func NewReviewsController(catalog CatalogStore, reviews ReviewStore) *ReviewsController {
	return &ReviewsController{
		catalog: catalog,
		reviews: reviews,
	}
}

type markReadRequest struct {
	Reader string `json:"reader" form:"reader"`
}

type addReviewRequest struct {
	Reader string `json:"reader" form:"reader"`
	Rating *int   `json:"rating" form:"rating"`
	Review string `json:"review" form:"review"`
}

// requireActingReader resolves the target reader from the request and checks
// it against the authenticated session. A reader may only act as themselves.
func requireActingReader(c *gin.Context, raw string) (entities.Reader, bool) {
	target, err := entities.ParseReader(raw)
	if err != nil {
		respondBadRequest(c, "reader must be one of: s, n")
		return "", false
	}
	acting := auth.GetReader(c)
	if acting == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return "", false
	}
	if acting != target {
		respondForbidden(c, "cannot act on behalf of another reader")
		return "", false
	}
	return target, true
}

// MarkRead marks a book as read for the acting reader. Marking an already
// read book succeeds without change.
// POST /api/books/:id/read
func (controller *ReviewsController) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req markReadRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	reader, ok := requireActingReader(c, req.Reader)
	if !ok {
		return
	}

	if err := controller.catalog.MarkRead(id, reader); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "mark read")
		return
	}

	respondSuccess(c, "book marked as read")
}

// AddReview records a rating and optional text for a book. Reviews are
// append-only; submitting again adds another entry.
// POST /api/books/:id/reviews
func (controller *ReviewsController) AddReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Rating == nil {
		respondBadRequest(c, "rating is required")
		return
	}

	reader, ok := requireActingReader(c, req.Reader)
	if !ok {
		return
	}

	review, err := controller.reviews.AddReview(id, reader, *req.Rating, req.Review)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrRatingRange):
			respondBadRequest(c, "rating must be between 1 and 5")
		case errors.Is(err, reviews.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, entities.ErrUnknownReader):
			respondBadRequest(c, "reader must be one of: s, n")
		default:
			respondInternalError(c, err, "add review")
		}
		return
	}

	respondCreated(c, review)
}
