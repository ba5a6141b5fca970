package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/roach88/kanjidex/internal/record"
)

// DefaultJSONPath is where the cache lives unless configured otherwise.
const DefaultJSONPath = "scripts/stroke_count_cache.json"

// JSONFile stores the cache as an indented JSON object.
//
// Keys are written in sorted order without ASCII escaping, so the file is
// stable across runs and easy to edit by hand. Hand-edited values are
// trusted as long as they are positive integers.
type JSONFile struct {
	Path string
}

// Load reads the cache file. Missing, unreadable, or malformed files load
// as an empty cache.
func (f *JSONFile) Load() *Cache {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return NewCache()
	}
	var entries map[string]int
	if err := json.Unmarshal(data, &entries); err != nil {
		return NewCache()
	}
	return NewCacheFrom(entries)
}

// Save writes the whole mapping, creating the parent directory if needed.
func (f *JSONFile) Save(c *Cache) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Snapshot()); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := record.WriteFileAtomic(f.Path, buf.Bytes()); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

// Location returns the file path.
func (f *JSONFile) Location() string {
	return f.Path
}
