// Package metadata looks up book cover references from the OpenLibrary
// catalog. Lookups are best-effort: failures are logged and reported to
// the caller, never surfaced to a reader.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

const userAgent = "ReadingChallenge/1.0 (https://github.com/skaufmann/reading-challenge)"

// ErrNoCover is returned when no search strategy yielded a cover reference.
var ErrNoCover = errors.New("no cover found")

var punctuation = regexp.MustCompile(`[^\w\s]`)

// OpenLibraryClient searches the OpenLibrary API for book covers.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a rate-limited OpenLibrary client.
func NewOpenLibraryClient(baseURL string) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

// FindCoverURL searches for a cover image, trying progressively looser
// strategies: title+author fields, a free-text query, then title only.
// The first result carrying a cover id wins. Returns ErrNoCover when
// every strategy comes up empty.
func (c *OpenLibraryClient) FindCoverURL(ctx context.Context, title, author string) (string, error) {
	cleanTitle := cleanQueryTerm(title)
	cleanAuthor := cleanQueryTerm(author)

	strategies := []string{
		fmt.Sprintf("%s/search.json?title=%s&author=%s&limit=5", c.baseURL, url.QueryEscape(cleanTitle), url.QueryEscape(cleanAuthor)),
		fmt.Sprintf("%s/search.json?q=%s&limit=5", c.baseURL, url.QueryEscape(cleanTitle+" "+cleanAuthor)),
		fmt.Sprintf("%s/search.json?title=%s&limit=10", c.baseURL, url.QueryEscape(cleanTitle)),
	}

	var lastErr error
	for _, searchURL := range strategies {
		coverID, err := c.searchCoverID(ctx, searchURL)
		if err != nil {
			lastErr = err
			continue
		}
		if coverID != 0 {
			return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", coverID), nil
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("cover search failed: %w", lastErr)
	}
	return "", ErrNoCover
}

// searchCoverID runs one search request and returns the first cover id
// found in its results, or 0 when the results carry none.
func (c *OpenLibraryClient) searchCoverID(ctx context.Context, searchURL string) (int, error) {
	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("search books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result openLibrarySearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode search response: %w", err)
	}

	for _, doc := range result.Docs {
		if doc.CoverI != 0 {
			return doc.CoverI, nil
		}
	}
	return 0, nil
}

// cleanQueryTerm strips punctuation that confuses the search endpoint.
func cleanQueryTerm(s string) string {
	return strings.TrimSpace(punctuation.ReplaceAllString(s, ""))
}

// OpenLibrary API response types (internal)

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	CoverI     int      `json:"cover_i"`
}
