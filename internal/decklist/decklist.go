// Package decklist reads decklists from JSON and text exports on disk.
package decklist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
)

// Entry is one decklist with an identifier and the place it came from.
type Entry struct {
	ID     string
	Source string
	List   archetype.Decklist
}

// jsonDeck is the on-disk JSON form of a decklist.
type jsonDeck struct {
	ID        string                `json:"Id"`
	Mainboard []archetype.CardEntry `json:"Mainboard"`
	Sideboard []archetype.CardEntry `json:"Sideboard"`
}

// textExtensions are the file extensions treated as text exports.
var textExtensions = map[string]bool{
	".txt": true,
	".dek": true,
	".dec": true,
}

// DecodeJSON decodes a single decklist object or an array of them. Decks
// without an "Id" are named after source, suffixed with their position when
// the input holds more than one.
func DecodeJSON(data []byte, source string) ([]Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty decklist file")
	}

	var decks []jsonDeck
	if data[0] == '[' {
		if err := json.Unmarshal(data, &decks); err != nil {
			return nil, fmt.Errorf("failed to decode decklist array: %w", err)
		}
	} else {
		var deck jsonDeck
		if err := json.Unmarshal(data, &deck); err != nil {
			return nil, fmt.Errorf("failed to decode decklist: %w", err)
		}
		decks = []jsonDeck{deck}
	}

	entries := make([]Entry, 0, len(decks))
	for i, deck := range decks {
		id := deck.ID
		if id == "" {
			id = defaultID(source, i, len(decks))
		}
		entries = append(entries, Entry{
			ID:     id,
			Source: source,
			List:   archetype.Decklist{Mainboard: deck.Mainboard, Sideboard: deck.Sideboard},
		})
	}
	return entries, nil
}

// Read decodes decklists from r. JSON is detected from the first character;
// anything else is parsed as a text export. source names the decks and may be
// empty, in which case random IDs are assigned.
func Read(r io.Reader, source string) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read decklist: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return DecodeJSON(trimmed, source)
	}
	return decodeText(data, source)
}

func decodeText(data []byte, source string) ([]Entry, error) {
	result, err := ParseText(string(data))
	if err != nil {
		return nil, err
	}
	return []Entry{{
		ID:     defaultID(source, 0, 1),
		Source: source,
		List:   result.Decklist,
	}}, nil
}

// LoadPath reads decklists from a file or, recursively, from every .json and
// text export under a directory. Files are visited in lexical order.
func LoadPath(path string) ([]Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext == ".json" || textExtensions[ext] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}
	sort.Strings(files)

	var entries []Entry
	for _, file := range files {
		loaded, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		entries = append(entries, loaded...)
	}
	return entries, nil
}

func loadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []Entry
	if strings.EqualFold(filepath.Ext(path), ".json") {
		entries, err = DecodeJSON(data, path)
	} else {
		entries, err = decodeText(data, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return entries, nil
}

// defaultID derives a deck ID from its source file name.
func defaultID(source string, index, total int) string {
	if source == "" {
		return uuid.NewString()
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if total > 1 {
		return fmt.Sprintf("%s#%d", base, index+1)
	}
	return base
}
