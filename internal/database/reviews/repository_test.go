package reviews

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skaufmann/reading-challenge/internal/database"
	"github.com/skaufmann/reading-challenge/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db.DB, cleanup
}

func createBook(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	book := entities.Book{Title: "Emma", Author: "Jane Austen", OrderIndex: 0}
	require.NoError(t, db.Create(&book).Error)
	return book.ID
}

func TestAddReview(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()
	bookID := createBook(t, db)

	t.Run("stores a valid review", func(t *testing.T) {
		review, err := repo.AddReview(bookID, entities.ReaderSilas, 4, "Loved it")
		assert.NoError(t, err)
		assert.NotZero(t, review.ID)
		assert.Equal(t, bookID, review.BookID)
		assert.Equal(t, entities.ReaderSilas, review.Reader)
		assert.Equal(t, 4, review.Rating)
		assert.False(t, review.DateAdded.IsZero())
	})

	t.Run("accepts boundary ratings", func(t *testing.T) {
		_, err := repo.AddReview(bookID, entities.ReaderNadine, 1, "")
		assert.NoError(t, err)
		_, err = repo.AddReview(bookID, entities.ReaderNadine, 5, "")
		assert.NoError(t, err)
	})

	t.Run("rejects out of range ratings", func(t *testing.T) {
		_, err := repo.AddReview(bookID, entities.ReaderSilas, 0, "")
		assert.ErrorIs(t, err, ErrRatingRange)
		_, err = repo.AddReview(bookID, entities.ReaderSilas, 6, "")
		assert.ErrorIs(t, err, ErrRatingRange)
	})

	t.Run("rejects unknown readers", func(t *testing.T) {
		_, err := repo.AddReview(bookID, entities.Reader("x"), 3, "")
		assert.ErrorIs(t, err, entities.ErrUnknownReader)
	})

	t.Run("rejects unknown books", func(t *testing.T) {
		_, err := repo.AddReview(99999, entities.ReaderSilas, 3, "")
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("reviews are append-only", func(t *testing.T) {
		before, err := repo.GetReviewsForBook(bookID)
		require.NoError(t, err)

		_, err = repo.AddReview(bookID, entities.ReaderSilas, 2, "Changed my mind")
		require.NoError(t, err)

		after, err := repo.GetReviewsForBook(bookID)
		require.NoError(t, err)
		assert.Len(t, after, len(before)+1)
	})
}

func TestGetReviewsForBook(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()
	bookID := createBook(t, db)

	t.Run("no reviews yields empty list", func(t *testing.T) {
		reviews, err := repo.GetReviewsForBook(bookID)
		assert.NoError(t, err)
		assert.Empty(t, reviews)
	})

	t.Run("newest first", func(t *testing.T) {
		first, err := repo.AddReview(bookID, entities.ReaderSilas, 3, "first")
		require.NoError(t, err)
		second, err := repo.AddReview(bookID, entities.ReaderNadine, 5, "second")
		require.NoError(t, err)

		reviews, err := repo.GetReviewsForBook(bookID)
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.False(t, reviews[0].DateAdded.Before(reviews[1].DateAdded))
		assert.ElementsMatch(t,
			[]uint{first.ID, second.ID},
			[]uint{reviews[0].ID, reviews[1].ID})
	})
}
