package resolver

import (
	"context"
	"time"

	"github.com/roach88/kanjidex/internal/store"
)

// Source identifies where a Lookup's count came from.
type Source string

const (
	SourceNone   Source = "none"
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
	SourceTable  Source = "table"
)

// Lookup is the outcome of one resolution.
type Lookup struct {
	// Strokes is the resolved count; zero when nothing was found.
	Strokes int

	// Source tells where Strokes came from.
	Source Source

	// Attempts counts network requests made for this lookup.
	Attempts int

	// Err is the last failure when Source is SourceNone.
	Err error
}

// Found reports whether the lookup produced a count.
func (l Lookup) Found() bool {
	return l.Source != SourceNone && l.Strokes > 0
}

// Remote reports whether the lookup went to the network at least once.
// Callers pace after every remote lookup, successful or not.
func (l Lookup) Remote() bool {
	return l.Attempts > 0
}

// Resolver resolves stroke counts.
//
// Resolve must return immediately with SourceCache when cache holds kanji.
// Successful network resolutions are stored into cache.
type Resolver interface {
	Resolve(ctx context.Context, kanji string, cache *store.Cache) Lookup
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fromCache is the shared cache short-circuit.
func fromCache(kanji string, cache *store.Cache) (Lookup, bool) {
	if cache == nil {
		return Lookup{}, false
	}
	n, ok := cache.Get(kanji)
	if !ok {
		return Lookup{}, false
	}
	return Lookup{Strokes: n, Source: SourceCache}, true
}
