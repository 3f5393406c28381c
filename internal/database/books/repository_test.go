package books

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skaufmann/reading-challenge/internal/database"
	"github.com/skaufmann/reading-challenge/internal/entities"
)

// setupTestRepo creates a repository over a fresh test database
func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), cleanup
}

func intPtr(v int) *int { return &v }

// seedCatalog inserts a small catalog:
//
//	Emma (1815) by Jane Austen, read by Silas
//	1984 (1949) by George Orwell, read by Nadine
//	Neuromancer (no year) by William Gibson, unread
//	Persuasion (1817) by Jane Austen, read by both
func seedCatalog(t *testing.T, repo *Repository) {
	t.Helper()
	err := repo.CreateBooks([]entities.Book{
		{Title: "Emma", Author: "Jane Austen", Year: intPtr(1815), SilasRead: true, OrderIndex: 0},
		{Title: "1984", Author: "George Orwell", Year: intPtr(1949), NadineRead: true, OrderIndex: 1},
		{Title: "Neuromancer", Author: "William Gibson", OrderIndex: 2},
		{Title: "Persuasion", Author: "Jane Austen", Year: intPtr(1817), SilasRead: true, NadineRead: true, OrderIndex: 3},
	})
	require.NoError(t, err)
}

func titles(books []entities.Book) []string {
	result := make([]string, 0, len(books))
	for _, book := range books {
		result = append(result, book.Title)
	}
	return result
}

func TestListBooksStatusFilters(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	seedCatalog(t, repo)

	t.Run("all returns everything in display order", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Emma", "1984", "Neuromancer", "Persuasion"}, titles(books))
	})

	t.Run("silas returns books Silas has read", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Status: StatusSilas})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Emma", "Persuasion"}, titles(books))
	})

	t.Run("nadine returns books Nadine has read", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Status: StatusNadine})
		assert.NoError(t, err)
		assert.Equal(t, []string{"1984", "Persuasion"}, titles(books))
	})

	t.Run("both returns books read by both readers", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Status: StatusBoth})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Persuasion"}, titles(books))
	})

	t.Run("unread returns books nobody has read", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Status: StatusUnread})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Neuromancer"}, titles(books))
	})
}

func TestListBooksEraFilters(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	seedCatalog(t, repo)

	t.Run("19th century", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Era: Era19th})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Emma", "Persuasion"}, titles(books))
	})

	t.Run("20th century", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Era: Era20th})
		assert.NoError(t, err)
		assert.Equal(t, []string{"1984"}, titles(books))
	})

	t.Run("books without a year match no era", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Era: Era21st})
		assert.NoError(t, err)
		assert.Empty(t, books)
	})
}

// TestStatusAndEraFiltersCombine walks one small catalog through combined
// filters and its overall stats:
//
//	Emma (1815), unread by both
//	1984 (1949), read by Silas only
//	Neuromancer (no year), read by both
func TestStatusAndEraFiltersCombine(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	require.NoError(t, repo.CreateBooks([]entities.Book{
		{Title: "Emma", Author: "Jane Austen", Year: intPtr(1815), OrderIndex: 0},
		{Title: "1984", Author: "George Orwell", Year: intPtr(1949), SilasRead: true, OrderIndex: 1},
		{Title: "Neuromancer", Author: "William Gibson", SilasRead: true, NadineRead: true, OrderIndex: 2},
	}))

	t.Run("unread and 19th century", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Status: StatusUnread, Era: Era19th})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Emma"}, titles(books))
	})

	t.Run("both readers", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Status: StatusBoth})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Neuromancer"}, titles(books))
	})

	t.Run("silas and 20th century", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Status: StatusSilas, Era: Era20th})
		assert.NoError(t, err)
		assert.Equal(t, []string{"1984"}, titles(books))
	})

	t.Run("whole-catalog stats", func(t *testing.T) {
		stats, err := repo.Stats()
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(2), stats.SilasRead)
		assert.Equal(t, 66.7, stats.SilasPercentage)
		assert.Equal(t, int64(1), stats.NadineRead)
		assert.Equal(t, 33.3, stats.NadinePercentage)
	})
}

func TestListBooksAuthorsFilter(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	seedCatalog(t, repo)

	t.Run("single author", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Authors: []string{"Jane Austen"}})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Emma", "Persuasion"}, titles(books))
	})

	t.Run("multiple authors", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Authors: []string{"Jane Austen", "George Orwell"}})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Emma", "1984", "Persuasion"}, titles(books))
	})

	t.Run("author match is exact", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Authors: []string{"Austen"}})
		assert.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("combined with status filter", func(t *testing.T) {
		books, err := repo.ListBooks(Filter{Status: StatusNadine, Authors: []string{"Jane Austen"}})
		assert.NoError(t, err)
		assert.Equal(t, []string{"Persuasion"}, titles(books))
	})
}

func TestListBooksOrdering(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	// Insert out of display order
	require.NoError(t, repo.CreateBooks([]entities.Book{
		{Title: "Third", Author: "A", OrderIndex: 2},
		{Title: "First", Author: "B", OrderIndex: 0},
		{Title: "Second", Author: "C", OrderIndex: 1},
	}))

	books, err := repo.ListBooks(Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third"}, titles(books))
}

func TestParseFilters(t *testing.T) {
	assert.Equal(t, StatusSilas, ParseStatusFilter("silas"))
	assert.Equal(t, StatusNadine, ParseStatusFilter("nadine"))
	assert.Equal(t, StatusBoth, ParseStatusFilter("both"))
	assert.Equal(t, StatusUnread, ParseStatusFilter("unread"))
	assert.Equal(t, StatusAll, ParseStatusFilter(""))
	assert.Equal(t, StatusAll, ParseStatusFilter("bogus"))

	assert.Equal(t, Era19th, ParseEraFilter("19th"))
	assert.Equal(t, Era20th, ParseEraFilter("20th"))
	assert.Equal(t, Era21st, ParseEraFilter("21st"))
	assert.Equal(t, EraAll, ParseEraFilter(""))
	assert.Equal(t, EraAll, ParseEraFilter("18th"))
}

func TestGetBookByID(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	seedCatalog(t, repo)

	books, err := repo.ListBooks(Filter{})
	require.NoError(t, err)

	book, err := repo.GetBookByID(books[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, "Emma", book.Title)

	_, err = repo.GetBookByID(99999)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestMarkRead(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	seedCatalog(t, repo)

	books, err := repo.ListBooks(Filter{Status: StatusUnread})
	require.NoError(t, err)
	require.Len(t, books, 1)
	bookID := books[0].ID

	t.Run("marks the reader's flag only", func(t *testing.T) {
		err := repo.MarkRead(bookID, entities.ReaderNadine)
		assert.NoError(t, err)

		book, err := repo.GetBookByID(bookID)
		require.NoError(t, err)
		assert.True(t, book.NadineRead)
		assert.False(t, book.SilasRead)
	})

	t.Run("marking an already read book succeeds", func(t *testing.T) {
		err := repo.MarkRead(bookID, entities.ReaderNadine)
		assert.NoError(t, err)

		book, err := repo.GetBookByID(bookID)
		require.NoError(t, err)
		assert.True(t, book.NadineRead)
	})

	t.Run("unknown book", func(t *testing.T) {
		err := repo.MarkRead(99999, entities.ReaderSilas)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestStats(t *testing.T) {
	t.Run("empty catalog reports zeros", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		stats, err := repo.Stats()
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Total)
		assert.Equal(t, 0.0, stats.SilasPercentage)
		assert.Equal(t, 0.0, stats.NadinePercentage)
	})

	t.Run("percentages rounded to one decimal", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		// 1 of 3 read: 33.3%
		require.NoError(t, repo.CreateBooks([]entities.Book{
			{Title: "A", Author: "X", SilasRead: true, OrderIndex: 0},
			{Title: "B", Author: "X", OrderIndex: 1},
			{Title: "C", Author: "X", OrderIndex: 2},
		}))

		stats, err := repo.Stats()
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(1), stats.SilasRead)
		assert.Equal(t, 33.3, stats.SilasPercentage)
		assert.Equal(t, 0.0, stats.NadinePercentage)
	})

	t.Run("century buckets", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()
		seedCatalog(t, repo)

		stats, err := repo.Stats()
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Books19th)
		assert.Equal(t, int64(1), stats.Books20th)
		assert.Equal(t, int64(0), stats.Books21st)
	})
}

func TestListAuthors(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.CreateBooks([]entities.Book{
		{Title: "A", Author: "William Gibson", OrderIndex: 0},
		{Title: "B", Author: "Jane Austen", OrderIndex: 1},
		{Title: "C", Author: "Jane Austen", OrderIndex: 2},
		{Title: "D", Author: "George Orwell", OrderIndex: 3},
	}))

	authors, err := repo.ListAuthors()
	require.NoError(t, err)
	require.Len(t, authors, 3)

	// Sorted by surname: Austen, Gibson, Orwell
	assert.Equal(t, "Jane Austen", authors[0].Name)
	assert.Equal(t, int64(2), authors[0].Count)
	assert.Equal(t, "William Gibson", authors[1].Name)
	assert.Equal(t, "George Orwell", authors[2].Name)
}
