package http

import (
	"github.com/skaufmann/reading-challenge/internal/database/books"
	"github.com/skaufmann/reading-challenge/internal/entities"
)

// This file consolidates the store interface definitions used by HTTP
// controllers. Each controller depends only on the methods it actually uses.

// CatalogStore provides read access to the book catalog plus the single
// mutation a reader can apply to a book directly (marking it read).
type CatalogStore interface {
	ListBooks(filter books.Filter) ([]entities.Book, error)
	GetBookByID(id uint) (*entities.Book, error)
	Stats() (*books.Stats, error)
	ListAuthors() ([]books.AuthorEntry, error)
	MarkRead(bookID uint, reader entities.Reader) error
}

// ReviewStore provides review creation and retrieval.
type ReviewStore interface {
	AddReview(bookID uint, reader entities.Reader, rating int, text string) (*entities.Review, error)
	GetReviewsForBook(bookID uint) ([]entities.Review, error)
}
