package resolver

import (
	"context"
	"errors"

	"github.com/roach88/kanjidex/internal/store"
)

// Chain tries resolvers in order and returns the first found lookup.
//
// Attempts are summed across members so a chain that fell through to the
// network is still paced by the caller.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, kanji string, cache *store.Cache) Lookup {
	var attempts int
	var errs []error
	for _, r := range c {
		l := r.Resolve(ctx, kanji, cache)
		attempts += l.Attempts
		if l.Found() {
			l.Attempts = attempts
			return l
		}
		if l.Err != nil {
			errs = append(errs, l.Err)
		}
	}
	return Lookup{Source: SourceNone, Attempts: attempts, Err: errors.Join(errs...)}
}
