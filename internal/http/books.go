package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skaufmann/reading-challenge/internal/covers"
	"github.com/skaufmann/reading-challenge/internal/database/books"
	"github.com/skaufmann/reading-challenge/internal/entities"
)

// BookView is the API representation of a book. The cover URL is always
// populated, falling back to the bundled placeholder image.
type BookView struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       *int   `json:"year"`
	SilasRead  bool   `json:"s_read"`
	NadineRead bool   `json:"n_read"`
	CoverURL   string `json:"cover_url"`
	OrderIndex int    `json:"order_index"`
}

type BooksController struct {
	catalog  CatalogStore
	reviews  ReviewStore
	resolver *covers.Resolver
}

func NewBooksController(catalog CatalogStore, reviews ReviewStore, resolver *covers.Resolver) *BooksController {
	return &BooksController{
		catalog:  catalog,
		reviews:  reviews,
		resolver: resolver,
	}
}

func (controller *BooksController) bookView(book entities.Book) BookView {
	view := BookView{
		ID:         book.ID,
		Title:      book.Title,
		Author:     book.Author,
		Year:       book.Year,
		SilasRead:  book.SilasRead,
		NadineRead: book.NadineRead,
		CoverURL:   covers.DefaultCoverURL,
		OrderIndex: book.OrderIndex,
	}
	if controller.resolver != nil {
		view.CoverURL = controller.resolver.Resolve(book.ID, book.Title, book.Author).URL
	} else if book.CoverURL != nil && *book.CoverURL != "" {
		view.CoverURL = *book.CoverURL
	}
	return view
}

// parseAuthors accepts both repeated authors params and a single
// comma-separated value.
func parseAuthors(c *gin.Context) []string {
	var result []string
	for _, raw := range c.QueryArray("authors") {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				result = append(result, name)
			}
		}
	}
	return result
}

// ListBooks returns the filtered catalog along with aggregate statistics.
// Statistics always describe the whole collection, not the filtered subset.
// GET /api/books?filter=&century=&authors=
func (controller *BooksController) ListBooks(c *gin.Context) {
	filter := books.Filter{
		Status:  books.ParseStatusFilter(c.Query("filter")),
		Era:     books.ParseEraFilter(c.Query("century")),
		Authors: parseAuthors(c),
	}

	matched, err := controller.catalog.ListBooks(filter)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	stats, err := controller.catalog.Stats()
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}

	views := make([]BookView, 0, len(matched))
	for _, book := range matched {
		views = append(views, controller.bookView(book))
	}

	c.JSON(http.StatusOK, gin.H{
		"books": views,
		"count": len(views),
		"stats": stats,
	})
}

// GetBook returns a single book together with its reviews, newest first.
// GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.GetBookByID(id)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	bookReviews, err := controller.reviews.GetReviewsForBook(id)
	if err != nil {
		respondInternalError(c, err, "get reviews")
		return
	}
	if bookReviews == nil {
		bookReviews = []entities.Review{}
	}

	c.JSON(http.StatusOK, gin.H{
		"book":    controller.bookView(*book),
		"reviews": bookReviews,
	})
}

// GetAuthors returns the distinct authors sorted by surname.
// GET /api/authors
func (controller *BooksController) GetAuthors(c *gin.Context) {
	authors, err := controller.catalog.ListAuthors()
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authors": authors,
		"count":   len(authors),
	})
}

// GetStats returns aggregate statistics for the whole collection.
// GET /api/stats
func (controller *BooksController) GetStats(c *gin.Context) {
	stats, err := controller.catalog.Stats()
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
