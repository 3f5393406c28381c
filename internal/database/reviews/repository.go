// Package reviews provides database operations for book reviews.
// Reviews are append-only: there is no update or delete.
package reviews

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/skaufmann/reading-challenge/internal/entities"
)

var (
	// ErrBookNotFound is returned when a review targets a nonexistent book.
	ErrBookNotFound = errors.New("book not found")

	// ErrRatingRange is returned when a rating falls outside 1-5.
	ErrRatingRange = errors.New("rating must be between 1 and 5")
)

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddReview appends a review for a book. The review text is optional and
// stored verbatim; the timestamp is server-assigned at creation.
func (r *Repository) AddReview(bookID uint, reader entities.Reader, rating int, text string) (*entities.Review, error) {
	if !reader.Valid() {
		return nil, entities.ErrUnknownReader
	}
	if rating < 1 || rating > 5 {
		return nil, ErrRatingRange
	}

	var count int64
	if err := r.db.Model(&entities.Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check book: %w", err)
	}
	if count == 0 {
		return nil, ErrBookNotFound
	}

	review := &entities.Review{
		BookID: bookID,
		Reader: reader,
		Rating: rating,
		Review: text,
	}
	if err := r.db.Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// GetReviewsForBook returns a book's reviews, newest first.
func (r *Repository) GetReviewsForBook(bookID uint) ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Where("book_id = ?", bookID).
		Order("date_added DESC").
		Find(&reviews).Error
	return reviews, err
}
