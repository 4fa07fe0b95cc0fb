package anki

import (
	"archive/zip"
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// PackageStore is an offline DeckStore that collects notes in memory and
// writes them out as an Anki package file (.apkg) on Flush. It lets the
// deck-creation workflow run when no remote store is reachable.
type PackageStore struct {
	outputPath string

	mu    sync.Mutex
	decks []string
	notes map[string][]packageNote
}

type packageNote struct {
	front string
	back  string
}

// NewPackageStore creates a store that writes the package to outputPath.
func NewPackageStore(outputPath string) *PackageStore {
	return &PackageStore{
		outputPath: outputPath,
		notes:      make(map[string][]packageNote),
	}
}

// CreateDeck registers a deck. Creating an existing deck is a no-op.
func (s *PackageStore) CreateDeck(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("deck name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[name]; !ok {
		s.decks = append(s.decks, name)
		s.notes[name] = nil
	}
	return nil
}

// AddNote records a note for a previously created deck.
func (s *PackageStore) AddNote(ctx context.Context, deck, front, back string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[deck]; !ok {
		return fmt.Errorf("deck %q does not exist", deck)
	}
	s.notes[deck] = append(s.notes[deck], packageNote{front: front, back: back})
	return nil
}

// NoteCount returns the number of notes collected so far.
func (s *PackageStore) NoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, notes := range s.notes {
		count += len(notes)
	}
	return count
}

// Flush writes the collected decks and notes as an .apkg file. The package
// is a zip holding an Anki collection database and an empty media manifest.
func (s *PackageStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tempDir, err := os.MkdirTemp("", "wordforge_apkg_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := s.writeCollection(dbPath); err != nil {
		return fmt.Errorf("failed to create collection database: %w", err)
	}

	// No media files: the manifest is an empty JSON object.
	mediaPath := filepath.Join(tempDir, "media")
	if err := os.WriteFile(mediaPath, []byte("{}"), 0644); err != nil {
		return fmt.Errorf("failed to write media manifest: %w", err)
	}

	if err := writeZip(s.outputPath, map[string]string{
		"collection.anki2": dbPath,
		"media":            mediaPath,
	}); err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	return nil
}

// writeCollection creates the Anki SQLite database with one model and the
// collected decks and notes.
func (s *PackageStore) writeCollection(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createCollectionTables(db); err != nil {
		return err
	}

	now := time.Now().Unix()
	modelID := time.Now().UnixMilli()

	deckIDs := make(map[string]int64, len(s.decks))
	for i, name := range s.decks {
		deckIDs[name] = modelID + int64(i) + 1
	}

	if err := s.insertCollectionRow(db, now, modelID, deckIDs); err != nil {
		return err
	}
	return s.insertNotes(db, modelID, deckIDs)
}

func createCollectionTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE col (
			id integer PRIMARY KEY,
			crt integer NOT NULL,
			mod integer NOT NULL,
			scm integer NOT NULL,
			ver integer NOT NULL,
			dty integer NOT NULL,
			usn integer NOT NULL,
			ls integer NOT NULL,
			conf text NOT NULL,
			models text NOT NULL,
			decks text NOT NULL,
			dconf text NOT NULL,
			tags text NOT NULL
		)`,
		`CREATE TABLE notes (
			id integer PRIMARY KEY,
			guid text NOT NULL,
			mid integer NOT NULL,
			mod integer NOT NULL,
			usn integer NOT NULL,
			tags text NOT NULL,
			flds text NOT NULL,
			sfld text NOT NULL,
			csum integer NOT NULL,
			flags integer NOT NULL,
			data text NOT NULL
		)`,
		`CREATE TABLE cards (
			id integer PRIMARY KEY,
			nid integer NOT NULL,
			did integer NOT NULL,
			ord integer NOT NULL,
			mod integer NOT NULL,
			usn integer NOT NULL,
			type integer NOT NULL,
			queue integer NOT NULL,
			due integer NOT NULL,
			ivl integer NOT NULL,
			factor integer NOT NULL,
			reps integer NOT NULL,
			lapses integer NOT NULL,
			left integer NOT NULL,
			odue integer NOT NULL,
			odid integer NOT NULL,
			flags integer NOT NULL,
			data text NOT NULL
		)`,
		`CREATE TABLE revlog (
			id integer PRIMARY KEY,
			cid integer NOT NULL,
			usn integer NOT NULL,
			ease integer NOT NULL,
			ivl integer NOT NULL,
			lastIvl integer NOT NULL,
			factor integer NOT NULL,
			time integer NOT NULL,
			type integer NOT NULL
		)`,
		`CREATE TABLE graves (
			usn integer NOT NULL,
			oid integer NOT NULL,
			type integer NOT NULL
		)`,
		`CREATE INDEX ix_notes_csum ON notes (csum)`,
		`CREATE INDEX ix_cards_nid ON cards (nid)`,
		`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

func (s *PackageStore) insertCollectionRow(db *sql.DB, now, modelID int64, deckIDs map[string]int64) error {
	decks := map[string]any{
		"1": deckConfig(1, "Default", now),
	}
	for name, id := range deckIDs {
		decks[strconv.FormatInt(id, 10)] = deckConfig(id, name, now)
	}
	decksJSON, _ := json.Marshal(decks)

	models := map[string]any{
		strconv.FormatInt(modelID, 10): map[string]any{
			"id":        modelID,
			"name":      "Basic (wordforge)",
			"type":      0,
			"mod":       now,
			"usn":       -1,
			"sortf":     0,
			"did":       1,
			"req":       []any{[]any{0, "all", []int{0}}},
			"vers":      []int{},
			"tags":      []string{},
			"latexPre":  "",
			"latexPost": "",
			"flds": []map[string]any{
				{"name": "Front", "ord": 0, "sticky": false, "rtl": false, "font": "Arial", "size": 20, "media": []string{}},
				{"name": "Back", "ord": 1, "sticky": false, "rtl": false, "font": "Arial", "size": 20, "media": []string{}},
			},
			"tmpls": []map[string]any{
				{
					"name":  "Card 1",
					"ord":   0,
					"qfmt":  "{{Front}}",
					"afmt":  "{{FrontSide}}\n\n<hr id=\"answer\">\n\n{{Back}}",
					"did":   nil,
					"bqfmt": "",
					"bafmt": "",
				},
			},
			"css": ".card { font-family: Arial, sans-serif; font-size: 20px; text-align: center; }",
		},
	}
	modelsJSON, _ := json.Marshal(models)

	conf := map[string]any{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{1},
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newSpread":     0,
		"dueCounts":     true,
		"collapseTime":  1200,
		"timeLim":       0,
		"schedVer":      1,
		"curModel":      strconv.FormatInt(modelID, 10),
		"dayLearnFirst": false,
	}
	confJSON, _ := json.Marshal(conf)

	dconf := map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"dyn":      0,
			"new":      map[string]any{"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500, "perDay": 20, "order": 1, "bury": true, "separate": true},
			"lapse":    map[string]any{"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0},
			"rev":      map[string]any{"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500, "ivlFct": 1, "bury": true, "minSpace": 1},
			"timer":    0,
			"maxTaken": 60,
			"usn":      0,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	}
	dconfJSON, _ := json.Marshal(dconf)

	_, err := db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1,        // id
		now,      // crt
		now*1000, // mod
		now*1000, // scm
		11,       // ver (schema version)
		0,        // dty
		0,        // usn
		0,        // ls
		string(confJSON),
		string(modelsJSON),
		string(decksJSON),
		string(dconfJSON),
		"{}",
	)
	return err
}

func deckConfig(id int64, name string, now int64) map[string]any {
	return map[string]any{
		"id":               id,
		"name":             name,
		"mod":              now,
		"desc":             "",
		"collapsed":        false,
		"dyn":              0,
		"conf":             1,
		"usn":              0,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
		"browserCollapsed": false,
		"extendNew":        10,
		"extendRev":        50,
	}
}

func (s *PackageStore) insertNotes(db *sql.DB, modelID int64, deckIDs map[string]int64) error {
	base := time.Now().UnixMilli()
	seq := int64(0)

	for _, deck := range s.decks {
		deckID := deckIDs[deck]
		for _, note := range s.notes[deck] {
			noteID := base + seq*2
			cardID := noteID + 1
			seq++

			fields := strings.Join([]string{note.front, note.back}, "\x1f")
			now := time.Now().Unix()

			_, err := db.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				noteID, uuid.NewString()[:8], modelID, now, -1, "", fields, note.front,
				fieldChecksum(note.front), 0, "")
			if err != nil {
				return fmt.Errorf("failed to insert note: %w", err)
			}

			_, err = db.Exec(`INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				cardID, noteID, deckID, 0, now, -1, 0, 0, seq, 0, 2500, 0, 0, 0, 0, 0, 0, "")
			if err != nil {
				return fmt.Errorf("failed to insert card: %w", err)
			}
		}
	}
	return nil
}

// fieldChecksum computes Anki's sort-field checksum: the first 8 hex digits
// of the SHA1 of the field, as an integer.
func fieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	value, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return value
}

// writeZip packs the named files into a zip archive at outputPath.
func writeZip(outputPath string, files map[string]string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	for name, path := range files {
		src, err := os.Open(path)
		if err != nil {
			return err
		}

		dst, err := zw.Create(name)
		if err != nil {
			src.Close()
			return err
		}
		if _, err := io.Copy(dst, src); err != nil {
			src.Close()
			return err
		}
		src.Close()
	}
	return nil
}
