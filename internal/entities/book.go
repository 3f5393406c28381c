package entities

import (
	"errors"
	"strings"
	"time"
)

// Reader identifies one of the two principals whose reading state is tracked.
type Reader string

const (
	ReaderSilas  Reader = "s"
	ReaderNadine Reader = "n"
)

// ErrUnknownReader is returned when a reader identifier is not one of the
// two fixed identities.
var ErrUnknownReader = errors.New("unknown reader")

// Readers lists the fixed set of principals in display order.
var Readers = []Reader{ReaderSilas, ReaderNadine}

// ParseReader normalizes and validates a reader identifier.
func ParseReader(s string) (Reader, error) {
	r := Reader(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownReader
	}
	return r, nil
}

// Valid reports whether the reader is one of the fixed identities.
func (r Reader) Valid() bool {
	return r == ReaderSilas || r == ReaderNadine
}

// DisplayName returns the human-readable name for a reader.
func (r Reader) DisplayName() string {
	switch r {
	case ReaderSilas:
		return "Silas"
	case ReaderNadine:
		return "Nadine"
	}
	return string(r)
}

// Book is a single entry of the shared book list.
//
// OrderIndex is assigned sequentially at import time and controls display
// order ever after; listings are always ordered by it, never by filters.
type Book struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Title      string  `gorm:"size:512;not null" json:"title"`
	Author     string  `gorm:"index;size:256;not null" json:"author"`
	Year       *int    `json:"year,omitempty"`
	SilasRead  bool    `gorm:"column:s_read;default:false" json:"s_read"`
	NadineRead bool    `gorm:"column:n_read;default:false" json:"n_read"`
	CoverURL   *string `gorm:"column:cover_url;size:2048" json:"cover_url,omitempty"`
	OrderIndex int     `gorm:"column:order_index;uniqueIndex" json:"order_index"`
}

func (Book) TableName() string {
	return "books"
}

// ReadBy reports whether the given reader has marked the book as read.
func (b *Book) ReadBy(r Reader) bool {
	switch r {
	case ReaderSilas:
		return b.SilasRead
	case ReaderNadine:
		return b.NadineRead
	}
	return false
}

// SetRead flips the given reader's flag to read. It never unsets.
func (b *Book) SetRead(r Reader) {
	switch r {
	case ReaderSilas:
		b.SilasRead = true
	case ReaderNadine:
		b.NadineRead = true
	}
}

// Review is an append-only reader review of a book. Reviews are never
// updated or deleted; a reader may review the same book more than once.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"index;not null" json:"book_id"`
	Reader    Reader    `gorm:"size:1;not null" json:"reader"`
	Rating    int       `gorm:"not null" json:"rating"`
	Review    string    `gorm:"type:text" json:"review,omitempty"`
	DateAdded time.Time `gorm:"autoCreateTime" json:"date_added"`
}

func (Review) TableName() string {
	return "reviews"
}
