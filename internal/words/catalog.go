package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCatalogNotFound indicates that no word list resource exists for the
// requested language.
var ErrCatalogNotFound = errors.New("word catalog not found")

// Entry is a single word in a catalog.
type Entry struct {
	Word         string `json:"word"`
	Difficulty   string `json:"word_difficulty"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
}

// Catalog maps opaque keys to word entries for one language.
type Catalog map[string]Entry

// catalogFile is the expected file name inside each language directory.
const catalogFile = "word-list-cleaned.json"

// CatalogLoader lazily loads and caches word catalogs from a data directory.
// Loaded catalogs are read-only and safe for concurrent use.
type CatalogLoader struct {
	dataDir string

	mu    sync.Mutex
	cache map[string]Catalog
}

// NewCatalogLoader creates a loader rooted at dataDir.
func NewCatalogLoader(dataDir string) *CatalogLoader {
	return &CatalogLoader{
		dataDir: dataDir,
		cache:   make(map[string]Catalog),
	}
}

// Load returns the catalog for the given language, reading it from disk on
// first use. The catalog file is expected at
// <dataDir>/<language>/word-list-cleaned.json.
func (l *CatalogLoader) Load(language string) (Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if catalog, ok := l.cache[language]; ok {
		return catalog, nil
	}

	path := filepath.Join(l.dataDir, language, catalogFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no word list for language %q at %s", ErrCatalogNotFound, language, path)
		}
		return nil, fmt.Errorf("failed to read word catalog %s: %w", path, err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse word catalog %s: %w", path, err)
	}

	l.cache[language] = catalog
	return catalog, nil
}
