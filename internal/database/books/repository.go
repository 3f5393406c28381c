// Package books provides database operations for the shared book list:
// filtered listings, reading statistics, the author directory and the
// per-reader mark-read mutation.
package books

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/skaufmann/reading-challenge/internal/entities"
)

// ErrBookNotFound is returned when a book id does not exist.
var ErrBookNotFound = errors.New("book not found")

// StatusFilter narrows a listing by who has read the books.
type StatusFilter string

const (
	StatusAll    StatusFilter = "all"
	StatusSilas  StatusFilter = "silas"
	StatusNadine StatusFilter = "nadine"
	StatusBoth   StatusFilter = "both"
	StatusUnread StatusFilter = "unread"
)

// EraFilter narrows a listing to a century bucket by publication year.
type EraFilter string

const (
	EraAll  EraFilter = "all"
	Era19th EraFilter = "19th"
	Era20th EraFilter = "20th"
	Era21st EraFilter = "21st"
)

// ParseStatusFilter maps a query value to a status filter. Unrecognized
// values fall back to "all" rather than failing the request.
func ParseStatusFilter(s string) StatusFilter {
	switch StatusFilter(s) {
	case StatusSilas, StatusNadine, StatusBoth, StatusUnread:
		return StatusFilter(s)
	}
	return StatusAll
}

// ParseEraFilter maps a query value to an era filter, defaulting to "all".
func ParseEraFilter(s string) EraFilter {
	switch EraFilter(s) {
	case Era19th, Era20th, Era21st:
		return EraFilter(s)
	}
	return EraAll
}

// Filter holds the independently optional listing dimensions. Selections
// combine with logical AND; they narrow the result set but never reorder it.
type Filter struct {
	Status  StatusFilter
	Era     EraFilter
	Authors []string // exact-name membership, not substring match
}

// Stats are aggregate counts over the entire dataset, regardless of any
// filter applied to the listing they accompany.
type Stats struct {
	Total            int64   `json:"total"`
	SilasRead        int64   `json:"s_read"`
	NadineRead       int64   `json:"n_read"`
	SilasPercentage  float64 `json:"s_percentage"`
	NadinePercentage float64 `json:"n_percentage"`
	Books19th        int64   `json:"books_19th"`
	Books20th        int64   `json:"books_20th"`
	Books21st        int64   `json:"books_21st"`
}

// AuthorEntry is one row of the author directory.
type AuthorEntry struct {
	Name    string `json:"name"`
	Count   int64  `json:"count"`
	Display string `json:"display"`
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBooks returns the books matching all filter selections, always
// ordered by order_index ascending.
func (r *Repository) ListBooks(filter Filter) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{})

	switch filter.Status {
	case StatusSilas:
		query = query.Where("s_read = ?", true)
	case StatusNadine:
		query = query.Where("n_read = ?", true)
	case StatusBoth:
		query = query.Where("s_read = ? AND n_read = ?", true, true)
	case StatusUnread:
		query = query.Where("s_read = ? AND n_read = ?", false, false)
	}

	// A NULL year matches no era bucket.
	switch filter.Era {
	case Era19th:
		query = query.Where("year >= 1800 AND year < 1900")
	case Era20th:
		query = query.Where("year >= 1900 AND year < 2000")
	case Era21st:
		query = query.Where("year >= 2000")
	}

	if len(filter.Authors) > 0 {
		query = query.Where("author IN ?", filter.Authors)
	}

	var books []entities.Book
	err := query.Order("order_index ASC").Find(&books).Error
	return books, err
}

// AllBooks returns the entire unfiltered list in display order.
func (r *Repository) AllBooks() ([]entities.Book, error) {
	return r.ListBooks(Filter{})
}

// GetBookByID retrieves a single book, returning ErrBookNotFound for an
// unknown id.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// MarkRead sets the given reader's read flag on a book. Marking an
// already-read book is a no-op with the same outcome.
func (r *Repository) MarkRead(bookID uint, reader entities.Reader) error {
	if !reader.Valid() {
		return entities.ErrUnknownReader
	}

	column := "s_read"
	if reader == entities.ReaderNadine {
		column = "n_read"
	}

	result := r.db.Model(&entities.Book{}).
		Where("id = ?", bookID).
		Update(column, true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// The update touches the row even when the flag was already set,
		// so zero affected rows means the book does not exist.
		var count int64
		if err := r.db.Model(&entities.Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrBookNotFound
		}
	}
	return nil
}

// UpdateCoverURL writes a resolved cover URL onto the book row. This is
// the only path that refreshes stored cover URLs.
func (r *Repository) UpdateCoverURL(bookID uint, url string) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ?", bookID).
		Update("cover_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Count returns the total number of books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// CreateBooks inserts books in bulk, preserving their order indexes.
func (r *Repository) CreateBooks(books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	return r.db.Create(&books).Error
}

// DeleteAllBooks removes every book row. Used by forced re-imports.
func (r *Repository) DeleteAllBooks() error {
	return r.db.Where("1 = 1").Delete(&entities.Book{}).Error
}

// Stats computes reading statistics over the whole dataset. Percentages
// have one decimal place and are 0 for an empty dataset.
func (r *Repository) Stats() (*Stats, error) {
	stats := &Stats{}

	model := func() *gorm.DB { return r.db.Model(&entities.Book{}) }

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := model().Where("s_read = ?", true).Count(&stats.SilasRead).Error; err != nil {
		return nil, err
	}
	if err := model().Where("n_read = ?", true).Count(&stats.NadineRead).Error; err != nil {
		return nil, err
	}
	if err := model().Where("year >= 1800 AND year < 1900").Count(&stats.Books19th).Error; err != nil {
		return nil, err
	}
	if err := model().Where("year >= 1900 AND year < 2000").Count(&stats.Books20th).Error; err != nil {
		return nil, err
	}
	if err := model().Where("year >= 2000").Count(&stats.Books21st).Error; err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.SilasPercentage = roundPercentage(stats.SilasRead, stats.Total)
		stats.NadinePercentage = roundPercentage(stats.NadineRead, stats.Total)
	}

	return stats, nil
}

func roundPercentage(part, total int64) float64 {
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// ListAuthors returns distinct authors with per-author book counts,
// sorted by surname (the substring after the final space, or the full
// name when there is none), ties broken by full name.
func (r *Repository) ListAuthors() ([]AuthorEntry, error) {
	type row struct {
		Author string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&entities.Book{}).
		Select("author, COUNT(*) as count").
		Group("author").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]AuthorEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, AuthorEntry{
			Name:    row.Author,
			Count:   row.Count,
			Display: fmt.Sprintf("%s (%d)", row.Author, row.Count),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		si, sj := surnameKey(entries[i].Name), surnameKey(entries[j].Name)
		if si != sj {
			return si < sj
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// surnameKey extracts the sort key for an author display string.
func surnameKey(name string) string {
	if idx := strings.LastIndex(name, " "); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
