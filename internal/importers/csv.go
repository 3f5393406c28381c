package importers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skaufmann/reading-challenge/internal/entities"
)

// BookRow represents a single data row from the reading list CSV.
// Columns: read flag for Silas, read flag for Nadine, title, author.
type BookRow struct {
	SilasRead  bool
	NadineRead bool
	Title      string
	Author     string
	Year       *int
}

// BookWriter is the subset of the books repository the importer needs.
type BookWriter interface {
	Count() (int64, error)
	CreateBooks(books []entities.Book) error
	DeleteAllBooks() error
}

// ImportResult summarises a CSV import run.
type ImportResult struct {
	Imported      int      `json:"imported"`
	Skipped       int      `json:"skipped"`
	AlreadyLoaded bool     `json:"already_loaded"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ParseBookListCSV parses the reading list CSV. The first row is a header
// and is skipped. Rows with fewer than four fields or an empty title are
// skipped rather than failing the whole import. A read flag is any
// case-insensitive "x". A trailing parenthesised year in the title, e.g.
// "Emma (1815)", is extracted into the Year field and stripped from the
// title.
func ParseBookListCSV(r io.Reader) ([]BookRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	if _, err := reader.Read(); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []BookRow
	var warnings []string
	lineNum := 1 // Start at 1 because we already read the header

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Line %d: %v", lineNum, err))
			continue
		}

		if len(record) < 4 || strings.TrimSpace(record[2]) == "" {
			warnings = append(warnings, fmt.Sprintf("Line %d: missing title, skipped", lineNum))
			continue
		}

		row := BookRow{
			SilasRead:  isReadFlag(record[0]),
			NadineRead: isReadFlag(record[1]),
			Title:      strings.TrimSpace(record[2]),
			Author:     strings.TrimSpace(record[3]),
		}
		row.Title, row.Year = extractYear(row.Title)

		rows = append(rows, row)
	}

	return rows, warnings, nil
}

func isReadFlag(field string) bool {
	return strings.ToLower(strings.TrimSpace(field)) == "x"
}

// extractYear pulls a parenthesised publication year out of a title.
// Titles without a parseable year are returned unchanged with a nil year.
func extractYear(title string) (string, *int) {
	openIdx := strings.LastIndex(title, "(")
	closeIdx := strings.LastIndex(title, ")")
	if openIdx == -1 || closeIdx == -1 || closeIdx < openIdx {
		return title, nil
	}

	year, err := strconv.Atoi(strings.TrimSpace(title[openIdx+1 : closeIdx]))
	if err != nil {
		return title, nil
	}

	return strings.TrimSpace(title[:openIdx]), &year
}

// ImportBooks loads the reading list CSV into the store. The import is a
// no-op when books already exist, unless force is set, in which case the
// existing catalog is replaced. Display order follows CSV row order.
func ImportBooks(store BookWriter, r io.Reader, force bool) (*ImportResult, error) {
	count, err := store.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}
	if count > 0 {
		if !force {
			return &ImportResult{AlreadyLoaded: true}, nil
		}
		if err := store.DeleteAllBooks(); err != nil {
			return nil, fmt.Errorf("failed to clear existing books: %w", err)
		}
	}

	rows, warnings, err := ParseBookListCSV(r)
	if err != nil {
		return nil, err
	}

	books := make([]entities.Book, 0, len(rows))
	for i, row := range rows {
		books = append(books, entities.Book{
			Title:      row.Title,
			Author:     row.Author,
			Year:       row.Year,
			SilasRead:  row.SilasRead,
			NadineRead: row.NadineRead,
			OrderIndex: i,
		})
	}

	if len(books) > 0 {
		if err := store.CreateBooks(books); err != nil {
			return nil, fmt.Errorf("failed to insert books: %w", err)
		}
	}

	return &ImportResult{
		Imported: len(books),
		Skipped:  len(warnings),
		Warnings: warnings,
	}, nil
}
