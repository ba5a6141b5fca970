package store

import (
	"fmt"
	"strings"
)

// Backend persists a Cache.
type Backend interface {
	// Load returns the persisted cache. It never fails: any read or parse
	// problem yields an empty cache.
	Load() *Cache

	// Save writes the full mapping, replacing what was stored.
	Save(c *Cache) error

	// Location describes where the cache lives, for logs.
	Location() string
}

// Backend kinds accepted by OpenBackend.
const (
	KindJSON   = "json"
	KindSQLite = "sqlite"
)

// ValidKinds lists the accepted backend kinds.
var ValidKinds = []string{KindJSON, KindSQLite}

// OpenBackend opens the backend of the given kind at path.
// An empty kind is inferred from the file extension (.db, .sqlite, .sqlite3
// select SQLite, anything else JSON). Callers must Close SQLite backends;
// CloseBackend handles both kinds.
func OpenBackend(kind, path string) (Backend, error) {
	if kind == "" {
		kind = kindFromPath(path)
	}
	switch kind {
	case KindJSON:
		return &JSONFile{Path: path}, nil
	case KindSQLite:
		return Open(path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q: must be one of %v", kind, ValidKinds)
	}
}

// CloseBackend releases resources held by b, if any.
func CloseBackend(b Backend) error {
	if s, ok := b.(*Store); ok {
		return s.Close()
	}
	return nil
}

func kindFromPath(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(lower, ext) {
			return KindSQLite
		}
	}
	return KindJSON
}
