package words

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
)

// ErrNoMatchingWords indicates that a difficulty filter matched nothing.
var ErrNoMatchingWords = errors.New("no words match the requested difficulty")

// SampleResult is the outcome of one sampling request. Returned may be
// smaller than Requested when the catalog holds fewer words than asked for;
// the clamp is deliberate and visible to the caller through the two counts.
type SampleResult struct {
	Language   string   `json:"language"`
	Difficulty string   `json:"difficulty,omitempty"`
	Requested  int      `json:"requested"`
	Returned   int      `json:"returned"`
	Words      []string `json:"words"`
}

// Sampler draws random words from language catalogs. The random source is
// injected so tests can seed it deterministically; it is guarded by a mutex
// because *rand.Rand is not safe for concurrent use and tool calls may
// sample in parallel.
type Sampler struct {
	loader *CatalogLoader

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a sampler over the given loader and random source.
func NewSampler(loader *CatalogLoader, rng *rand.Rand) *Sampler {
	return &Sampler{
		loader: loader,
		rng:    rng,
	}
}

// Sample draws n distinct words uniformly at random from the catalog for
// the given language. If n exceeds the catalog size the sample is clamped
// to the whole catalog.
func (s *Sampler) Sample(language string, n int) (*SampleResult, error) {
	catalog, err := s.loader.Load(language)
	if err != nil {
		return nil, err
	}

	result := s.draw(catalog, n)
	result.Language = language
	return result, nil
}

// SampleByDifficulty draws n distinct words whose difficulty equals the
// given level (case-insensitive). Returns ErrNoMatchingWords when the
// filtered catalog is empty.
func (s *Sampler) SampleByDifficulty(language, difficulty string, n int) (*SampleResult, error) {
	catalog, err := s.loader.Load(language)
	if err != nil {
		return nil, err
	}

	filtered := make(Catalog)
	for key, entry := range catalog {
		if strings.EqualFold(entry.Difficulty, difficulty) {
			filtered[key] = entry
		}
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: language %q, difficulty %q", ErrNoMatchingWords, language, difficulty)
	}

	result := s.draw(filtered, n)
	result.Language = language
	result.Difficulty = strings.ToLower(difficulty)
	return result, nil
}

// draw selects min(n, len(catalog)) distinct entries without replacement.
func (s *Sampler) draw(catalog Catalog, n int) *SampleResult {
	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	// Map iteration order is randomized by the runtime; sort first so the
	// seeded random source is the only source of variation.
	sort.Strings(keys)

	count := n
	if count > len(keys) {
		count = len(keys)
	}
	if count < 0 {
		count = 0
	}

	s.mu.Lock()
	order := s.rng.Perm(len(keys))
	s.mu.Unlock()

	selected := make([]string, 0, count)
	for _, i := range order[:count] {
		selected = append(selected, catalog[keys[i]].Word)
	}

	return &SampleResult{
		Requested: n,
		Returned:  len(selected),
		Words:     selected,
	}
}
