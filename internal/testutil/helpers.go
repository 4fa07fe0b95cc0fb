package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// CatalogEntry mirrors the word catalog resource shape.
type CatalogEntry struct {
	Word         string `json:"word"`
	Difficulty   string `json:"word_difficulty"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
}

// WriteCatalog writes a word catalog fixture under
// <dataDir>/<language>/word-list-cleaned.json and returns dataDir.
func WriteCatalog(t *testing.T, dataDir, language string, entries map[string]CatalogEntry) string {
	t.Helper()

	dir := filepath.Join(dataDir, language)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create catalog directory: %v", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("Failed to encode catalog fixture: %v", err)
	}

	path := filepath.Join(dir, "word-list-cleaned.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write catalog fixture %s: %v", path, err)
	}
	return dataDir
}

// SpanishCatalog returns a small Spanish fixture spanning all difficulty
// levels.
func SpanishCatalog() map[string]CatalogEntry {
	return map[string]CatalogEntry{
		"1": {Word: "casa", Difficulty: "beginner", PartOfSpeech: "noun"},
		"2": {Word: "perro", Difficulty: "beginner", PartOfSpeech: "noun"},
		"3": {Word: "gato", Difficulty: "beginner", PartOfSpeech: "noun"},
		"4": {Word: "aunque", Difficulty: "intermediate", PartOfSpeech: "conjunction"},
		"5": {Word: "desarrollar", Difficulty: "intermediate", PartOfSpeech: "verb"},
		"6": {Word: "acontecimiento", Difficulty: "advanced", PartOfSpeech: "noun"},
	}
}
