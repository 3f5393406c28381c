// Package covers resolves display URLs for book cover images.
//
// Covers are stored locally under a static directory; a JSON sidecar file
// maps a book's identity (id, title, author) to its filename. Resolution
// is local-first and never fails: the worst case is the default
// placeholder path. Remote acquisition lives in the downloader and is an
// explicitly-invoked maintenance step, never part of request serving.
package covers

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/skaufmann/reading-challenge/internal/entities"
	"github.com/skaufmann/reading-challenge/internal/utils"
)

// DefaultCoverURL is the placeholder served when no cover is available.
const DefaultCoverURL = "/static/covers/default_book_cover.jpg"

// staticPrefix is the URL prefix under which the covers directory is served.
const staticPrefix = "/static/covers/"

// Outcome describes how a cover URL was produced.
type Outcome string

const (
	// OutcomeMapped means the persisted mapping pointed at a file on disk.
	OutcomeMapped Outcome = "mapped"
	// OutcomeAdopted means a file with the derived name was found on disk
	// and adopted into the mapping.
	OutcomeAdopted Outcome = "adopted"
	// OutcomeDefault means no cover was found and the placeholder is used.
	OutcomeDefault Outcome = "default"
)

// Resolution is the result of resolving a book's cover.
type Resolution struct {
	URL     string
	Outcome Outcome
}

// BookStore is the subset of the book repository the resolver needs for
// batch synchronization.
type BookStore interface {
	AllBooks() ([]entities.Book, error)
	UpdateCoverURL(bookID uint, url string) error
}

// Resolver owns the cover mapping cache. The mapping file is loaded on
// first use and rewritten wholesale on every change (last-writer-wins,
// acceptable for a single-operator deployment).
type Resolver struct {
	coversDir   string
	mappingPath string

	mu       sync.Mutex
	mappings map[string]string
	loaded   bool
}

// NewResolver creates a resolver rooted at the given covers directory.
func NewResolver(coversDir, mappingPath string) (*Resolver, error) {
	if err := os.MkdirAll(coversDir, 0755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}
	return &Resolver{
		coversDir:   coversDir,
		mappingPath: mappingPath,
		mappings:    make(map[string]string),
	}, nil
}

// CoversDir returns the covers directory path.
func (r *Resolver) CoversDir() string {
	return r.coversDir
}

// BookKey builds the composite mapping key for a book. The concatenation
// is exact and case-sensitive.
func BookKey(bookID uint, title, author string) string {
	return fmt.Sprintf("%d_%s_%s", bookID, title, author)
}

// Filename derives the expected cover filename for a book: a sanitized,
// length-capped title fragment plus a short content hash of title+author.
// The name is stable and independent of insertion order.
func Filename(bookID uint, title, author string) string {
	content := strings.ToLower(title + "_" + author)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(content)))[:8]
	return fmt.Sprintf("book_%d_%s_%s.jpg", bookID, utils.SanitizeTitleFragment(title), hash)
}

// Resolve produces a display URL for a book's cover. It never returns an
// error; when nothing is available the default placeholder is returned,
// and no mapping is persisted for the default so a later resolution can
// still succeed once a real cover appears.
func (r *Resolver) Resolve(bookID uint, title, author string) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	key := BookKey(bookID, title, author)

	if filename, ok := r.mappings[key]; ok {
		if r.fileExists(filename) {
			return Resolution{URL: staticPrefix + filename, Outcome: OutcomeMapped}
		}
	}

	// A manually placed file with the derived name is adopted into the
	// mapping on sight.
	expected := Filename(bookID, title, author)
	if r.fileExists(expected) {
		r.mappings[key] = expected
		if err := r.flushLocked(); err != nil {
			log.Printf("Error saving cover mappings: %v", err)
		}
		return Resolution{URL: staticPrefix + expected, Outcome: OutcomeAdopted}
	}

	return Resolution{URL: DefaultCoverURL, Outcome: OutcomeDefault}
}

// HasCover reports whether a book already has a mapped cover file on disk.
func (r *Resolver) HasCover(bookID uint, title, author string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	if filename, ok := r.mappings[BookKey(bookID, title, author)]; ok && r.fileExists(filename) {
		return true
	}
	return r.fileExists(Filename(bookID, title, author))
}

// RecordMapping persists a mapping from a book identity to a stored
// cover filename, overwriting any previous entry.
func (r *Resolver) RecordMapping(bookID uint, title, author, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	r.mappings[BookKey(bookID, title, author)] = filename
	return r.flushLocked()
}

// AddCover installs a cover for a book from a local image file: the image
// is normalized, written under the derived filename and recorded in the
// mapping.
func (r *Resolver) AddCover(bookID uint, title, author, imagePath string) error {
	src, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer src.Close()

	filename := Filename(bookID, title, author)
	if err := r.WriteCover(filename, src); err != nil {
		return err
	}
	return r.RecordMapping(bookID, title, author, filename)
}

// WriteCover normalizes an image stream and writes it atomically into the
// covers directory under the given filename.
func (r *Resolver) WriteCover(filename string, src io.Reader) error {
	tmpFile, err := os.CreateTemp(r.coversDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if err := NormalizeImage(src, tmpFile); err != nil {
		return fmt.Errorf("normalize image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, filepath.Join(r.coversDir, filename))
}

// SyncResult summarizes a batch database synchronization.
type SyncResult struct {
	Total     int `json:"total"`
	Mapped    int `json:"mapped"`
	Adopted   int `json:"adopted"`
	Defaulted int `json:"defaulted"`
}

// SyncDatabase resolves every book and writes the resulting URL onto the
// book row. This is the only way stored cover URLs are refreshed.
func (r *Resolver) SyncDatabase(store BookStore) (*SyncResult, error) {
	books, err := store.AllBooks()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	result := &SyncResult{Total: len(books)}
	for _, book := range books {
		res := r.Resolve(book.ID, book.Title, book.Author)
		if err := store.UpdateCoverURL(book.ID, res.URL); err != nil {
			return result, fmt.Errorf("update cover for book %d: %w", book.ID, err)
		}
		switch res.Outcome {
		case OutcomeMapped:
			result.Mapped++
		case OutcomeAdopted:
			result.Adopted++
		default:
			result.Defaulted++
		}
	}
	return result, nil
}

// CoverStats summarizes local cover coverage across the catalog.
type CoverStats struct {
	Mappings   int      `json:"mappings"`
	CoverFiles int      `json:"cover_files"`
	WithCover  int      `json:"with_cover"`
	Missing    []string `json:"missing"`
}

// Stats reports mapping and file counts plus which books have no local
// cover. Missing entries are "Title by Author" lines in catalog order.
func (r *Resolver) Stats(store BookStore) (*CoverStats, error) {
	books, err := store.AllBooks()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	stats := &CoverStats{
		Mappings:   r.MappingCount(),
		CoverFiles: r.countCoverFiles(),
	}
	for _, book := range books {
		if r.HasCover(book.ID, book.Title, book.Author) {
			stats.WithCover++
		} else {
			stats.Missing = append(stats.Missing, fmt.Sprintf("%s by %s", book.Title, book.Author))
		}
	}
	return stats, nil
}

// countCoverFiles counts image files in the covers directory, skipping
// the mapping sidecar and any leftover temp files.
func (r *Resolver) countCoverFiles() int {
	entries, err := os.ReadDir(r.coversDir)
	if err != nil {
		return 0
	}

	mappingName := filepath.Base(r.mappingPath)
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == mappingName || strings.HasPrefix(entry.Name(), "cover_tmp_") {
			continue
		}
		count++
	}
	return count
}

// MappingCount returns the number of persisted cover mappings.
func (r *Resolver) MappingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	return len(r.mappings)
}

func (r *Resolver) fileExists(filename string) bool {
	_, err := os.Stat(filepath.Join(r.coversDir, filename))
	return err == nil
}

// ensureLoaded lazily reads the mapping file. Callers must hold the lock.
func (r *Resolver) ensureLoaded() {
	if r.loaded {
		return
	}
	r.loaded = true

	data, err := os.ReadFile(r.mappingPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error loading cover mappings: %v", err)
		}
		return
	}
	if err := json.Unmarshal(data, &r.mappings); err != nil {
		log.Printf("Error parsing cover mappings: %v", err)
		r.mappings = make(map[string]string)
	}
}

// flushLocked rewrites the mapping file wholesale. Callers must hold the lock.
func (r *Resolver) flushLocked() error {
	data, err := json.MarshalIndent(r.mappings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.mappingPath, data, 0644)
}
