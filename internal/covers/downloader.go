package covers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// CoverSearcher finds a downloadable cover image URL for a book.
type CoverSearcher interface {
	FindCoverURL(ctx context.Context, title, author string) (string, error)
}

// DownloadStats summarizes a download run.
type DownloadStats struct {
	Total      int `json:"total"`
	AlreadyHad int `json:"already_had"`
	Downloaded int `json:"downloaded"`
	Failed     int `json:"failed"`
}

// Downloader acquires covers from an external catalog and stores them
// locally. It is a maintenance tool, invoked explicitly from the CLI and
// never from the request-serving path. Every failure degrades to the
// default placeholder and is logged, not propagated.
type Downloader struct {
	searcher   CoverSearcher
	resolver   *Resolver
	httpClient *http.Client

	maxRetries   int
	retryDelay   time.Duration
	betweenBooks time.Duration
}

// NewDownloader creates a downloader with bounded retries and fixed
// inter-attempt delays.
func NewDownloader(searcher CoverSearcher, resolver *Resolver) *Downloader {
	return &Downloader{
		searcher: searcher,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries:   3,
		retryDelay:   2 * time.Second,
		betweenBooks: time.Second,
	}
}

// Run processes every book from the store, downloading missing covers.
// A non-positive limit processes all books.
func (d *Downloader) Run(ctx context.Context, store BookStore, limit int) (*DownloadStats, error) {
	books, err := store.AllBooks()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if limit > 0 && len(books) > limit {
		books = books[:limit]
	}

	stats := &DownloadStats{Total: len(books)}
	for i, book := range books {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		switch d.ProcessBook(ctx, book.ID, book.Title, book.Author) {
		case outcomeHadCover:
			stats.AlreadyHad++
		case outcomeDownloaded:
			stats.Downloaded++
		default:
			stats.Failed++
		}

		if i < len(books)-1 {
			time.Sleep(d.betweenBooks)
		}
	}
	return stats, nil
}

type processOutcome int

const (
	outcomeFailed processOutcome = iota
	outcomeHadCover
	outcomeDownloaded
)

// ProcessBook acquires a single book's cover: skip when one is already
// present, search the catalog, then download with bounded retries. The
// mapping is recorded only on success.
func (d *Downloader) ProcessBook(ctx context.Context, bookID uint, title, author string) processOutcome {
	if d.resolver.HasCover(bookID, title, author) {
		return outcomeHadCover
	}

	coverURL, err := d.searcher.FindCoverURL(ctx, title, author)
	if err != nil {
		log.Printf("No cover found for %q by %s: %v", title, author, err)
		return outcomeFailed
	}

	filename := Filename(bookID, title, author)
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		if err := d.download(ctx, coverURL, filename); err != nil {
			log.Printf("Download attempt %d/%d for %q failed: %v", attempt, d.maxRetries, title, err)
			if attempt < d.maxRetries {
				time.Sleep(d.retryDelay)
			}
			continue
		}

		if err := d.resolver.RecordMapping(bookID, title, author, filename); err != nil {
			log.Printf("Error recording cover mapping for %q: %v", title, err)
			return outcomeFailed
		}
		log.Printf("Downloaded cover for %q by %s: %s", title, author, filename)
		return outcomeDownloaded
	}
	return outcomeFailed
}

// download fetches a cover image and stores it normalized in the covers
// directory.
func (d *Downloader) download(ctx context.Context, coverURL, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "ReadingChallenge/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	return d.resolver.WriteCover(filename, resp.Body)
}
