package covers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skaufmann/reading-challenge/internal/entities"
)

func setupResolver(t *testing.T) *Resolver {
	t.Helper()
	dir := t.TempDir()
	resolver, err := NewResolver(filepath.Join(dir, "covers"), filepath.Join(dir, "covers_mapping.json"))
	require.NoError(t, err)
	return resolver
}

func touchCover(t *testing.T, resolver *Resolver, filename string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(resolver.CoversDir(), filename), []byte("jpeg"), 0644))
}

func TestFilename(t *testing.T) {
	name := Filename(7, "Emma", "Jane Austen")

	assert.Contains(t, name, "book_7_Emma_")
	assert.Equal(t, ".jpg", filepath.Ext(name))

	// Derived names are stable and case-insensitive on the hashed part
	assert.Equal(t, name, Filename(7, "Emma", "Jane Austen"))
	assert.NotEqual(t, name, Filename(8, "Emma", "Jane Austen"))
	assert.NotEqual(t, name, Filename(7, "Emma", "Charlotte Brontë"))
}

func TestResolveDefault(t *testing.T) {
	resolver := setupResolver(t)

	res := resolver.Resolve(1, "Emma", "Jane Austen")
	assert.Equal(t, DefaultCoverURL, res.URL)
	assert.Equal(t, OutcomeDefault, res.Outcome)

	// The default is not persisted, so a later resolution can still find
	// a real cover
	assert.Equal(t, 0, resolver.MappingCount())
}

func TestResolveMapped(t *testing.T) {
	resolver := setupResolver(t)

	touchCover(t, resolver, "custom_name.jpg")
	require.NoError(t, resolver.RecordMapping(1, "Emma", "Jane Austen", "custom_name.jpg"))

	res := resolver.Resolve(1, "Emma", "Jane Austen")
	assert.Equal(t, "/static/covers/custom_name.jpg", res.URL)
	assert.Equal(t, OutcomeMapped, res.Outcome)
}

func TestResolveMappedFileMissing(t *testing.T) {
	resolver := setupResolver(t)

	// Mapping points at a file that is gone
	require.NoError(t, resolver.RecordMapping(1, "Emma", "Jane Austen", "gone.jpg"))

	res := resolver.Resolve(1, "Emma", "Jane Austen")
	assert.Equal(t, DefaultCoverURL, res.URL)
	assert.Equal(t, OutcomeDefault, res.Outcome)
}

func TestResolveAdoptsDerivedFile(t *testing.T) {
	resolver := setupResolver(t)

	filename := Filename(3, "1984", "George Orwell")
	touchCover(t, resolver, filename)

	res := resolver.Resolve(3, "1984", "George Orwell")
	assert.Equal(t, "/static/covers/"+filename, res.URL)
	assert.Equal(t, OutcomeAdopted, res.Outcome)

	// The adoption is persisted to the mapping file
	data, err := os.ReadFile(resolver.mappingPath)
	require.NoError(t, err)
	var mappings map[string]string
	require.NoError(t, json.Unmarshal(data, &mappings))
	assert.Equal(t, filename, mappings[BookKey(3, "1984", "George Orwell")])

	// Subsequent resolutions use the mapping
	res = resolver.Resolve(3, "1984", "George Orwell")
	assert.Equal(t, OutcomeMapped, res.Outcome)
}

func TestMappingSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	coversDir := filepath.Join(dir, "covers")
	mappingPath := filepath.Join(dir, "covers_mapping.json")

	first, err := NewResolver(coversDir, mappingPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(coversDir, "emma.jpg"), []byte("jpeg"), 0644))
	require.NoError(t, first.RecordMapping(1, "Emma", "Jane Austen", "emma.jpg"))

	second, err := NewResolver(coversDir, mappingPath)
	require.NoError(t, err)
	res := second.Resolve(1, "Emma", "Jane Austen")
	assert.Equal(t, "/static/covers/emma.jpg", res.URL)
	assert.Equal(t, OutcomeMapped, res.Outcome)
}

func TestBookKeyIsExact(t *testing.T) {
	assert.Equal(t, "1_Emma_Jane Austen", BookKey(1, "Emma", "Jane Austen"))
	assert.NotEqual(t, BookKey(1, "Emma", "Jane Austen"), BookKey(1, "emma", "Jane Austen"))
}

// fakeBookStore implements BookStore in memory.
type fakeBookStore struct {
	books   []entities.Book
	updates map[uint]string
}

func (s *fakeBookStore) AllBooks() ([]entities.Book, error) {
	return s.books, nil
}

func (s *fakeBookStore) UpdateCoverURL(bookID uint, url string) error {
	if s.updates == nil {
		s.updates = make(map[uint]string)
	}
	s.updates[bookID] = url
	return nil
}

func TestSyncDatabase(t *testing.T) {
	resolver := setupResolver(t)

	touchCover(t, resolver, "emma.jpg")
	require.NoError(t, resolver.RecordMapping(1, "Emma", "Jane Austen", "emma.jpg"))

	store := &fakeBookStore{books: []entities.Book{
		{ID: 1, Title: "Emma", Author: "Jane Austen"},
		{ID: 2, Title: "1984", Author: "George Orwell"},
	}}

	result, err := resolver.SyncDatabase(store)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Mapped)
	assert.Equal(t, 1, result.Defaulted)

	assert.Equal(t, "/static/covers/emma.jpg", store.updates[1])
	assert.Equal(t, DefaultCoverURL, store.updates[2])
}

func TestResolverStats(t *testing.T) {
	resolver := setupResolver(t)

	touchCover(t, resolver, "emma.jpg")
	require.NoError(t, resolver.RecordMapping(1, "Emma", "Jane Austen", "emma.jpg"))

	store := &fakeBookStore{books: []entities.Book{
		{ID: 1, Title: "Emma", Author: "Jane Austen"},
		{ID: 2, Title: "1984", Author: "George Orwell"},
		{ID: 3, Title: "Neuromancer", Author: "William Gibson"},
	}}

	stats, err := resolver.Stats(store)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Mappings)
	assert.Equal(t, 1, stats.CoverFiles)
	assert.Equal(t, 1, stats.WithCover)
	assert.Equal(t, []string{"1984 by George Orwell", "Neuromancer by William Gibson"}, stats.Missing)
}

func TestResolverStatsIgnoresSidecarAndTempFiles(t *testing.T) {
	dir := t.TempDir()
	resolver, err := NewResolver(dir, filepath.Join(dir, "covers_mapping.json"))
	require.NoError(t, err)

	touchCover(t, resolver, "emma.jpg")
	touchCover(t, resolver, "cover_tmp_123")
	require.NoError(t, resolver.RecordMapping(1, "Emma", "Jane Austen", "emma.jpg"))

	stats, err := resolver.Stats(&fakeBookStore{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CoverFiles)
	assert.Empty(t, stats.Missing)
}

func TestAddCover(t *testing.T) {
	resolver := setupResolver(t)

	img := image.NewRGBA(image.Rect(0, 0, 100, 150))
	srcPath := filepath.Join(t.TempDir(), "source.png")
	require.NoError(t, os.WriteFile(srcPath, encodePNG(t, img).Bytes(), 0644))

	require.NoError(t, resolver.AddCover(3, "Neuromancer", "William Gibson", srcPath))

	filename := Filename(3, "Neuromancer", "William Gibson")
	res := resolver.Resolve(3, "Neuromancer", "William Gibson")
	assert.Equal(t, OutcomeMapped, res.Outcome)
	assert.Equal(t, "/static/covers/"+filename, res.URL)

	// The stored file is re-encoded like a downloaded cover
	data, err := os.ReadFile(filepath.Join(resolver.CoversDir(), filename))
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestAddCoverMissingSource(t *testing.T) {
	resolver := setupResolver(t)

	err := resolver.AddCover(4, "Emma", "Jane Austen", filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
	assert.Equal(t, 0, resolver.MappingCount())
}
