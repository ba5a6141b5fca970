package resolver

import (
	"context"
	"errors"

	"github.com/roach88/kanjidex/internal/store"
)

// ErrNotInTable is the Lookup error for a table miss.
var ErrNotInTable = errors.New("not in table")

// Table resolves stroke counts from a fixed in-memory table.
// It never touches the network and never writes to the cache.
type Table struct {
	strokes map[string]int
}

// NewTable returns a Table over entries. Nil entries selects the built-in
// table.
func NewTable(entries map[string]int) *Table {
	if entries == nil {
		entries = builtinStrokes
	}
	t := &Table{strokes: make(map[string]int, len(entries))}
	for k, v := range entries {
		if v > 0 {
			t.strokes[k] = v
		}
	}
	return t
}

// Len returns the number of table entries.
func (t *Table) Len() int {
	return len(t.strokes)
}

// Resolve implements Resolver.
func (t *Table) Resolve(_ context.Context, kanji string, cache *store.Cache) Lookup {
	if l, ok := fromCache(kanji, cache); ok {
		return l
	}
	if n, ok := t.strokes[kanji]; ok {
		return Lookup{Strokes: n, Source: SourceTable}
	}
	return Lookup{Source: SourceNone, Err: ErrNotInTable}
}
