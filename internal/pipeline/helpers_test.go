package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/kanjidex/internal/resolver"
	"github.com/roach88/kanjidex/internal/store"
	"github.com/roach88/kanjidex/internal/testutil"
)

const testRunID = "run-test-0001"

// memBackend is an in-memory store.Backend that records every save.
type memBackend struct {
	saves []map[string]int
	err   error
}

func (b *memBackend) Load() *store.Cache { return store.NewCache() }

func (b *memBackend) Save(c *store.Cache) error {
	if b.err != nil {
		return b.err
	}
	b.saves = append(b.saves, c.Snapshot())
	return nil
}

func (b *memBackend) Location() string { return "memory" }

// resolverFunc adapts a function to resolver.Resolver.
type resolverFunc func(ctx context.Context, kanji string, cache *store.Cache) resolver.Lookup

func (f resolverFunc) Resolve(ctx context.Context, kanji string, cache *store.Cache) resolver.Lookup {
	return f(ctx, kanji, cache)
}

// remoteFive pretends every lookup went to the network and found 5 strokes.
func remoteFive(_ context.Context, kanji string, cache *store.Cache) resolver.Lookup {
	cache.Put(kanji, 5)
	return resolver.Lookup{Strokes: 5, Source: resolver.SourceRemote, Attempts: 1}
}

type testEnv struct {
	backend *memBackend
	sleeper *testutil.FakeSleeper
	logs    *observer.ObservedLogs
}

// newTestPipeline wires r to an in-memory backend, a fake sleeper and an
// observed logger.
func newTestPipeline(t *testing.T, r resolver.Resolver, cache *store.Cache, opts ...Option) (*Pipeline, *testEnv) {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	env := &testEnv{
		backend: &memBackend{},
		sleeper: testutil.NewFakeSleeper(),
		logs:    logs,
	}
	base := []Option{
		WithLogger(zap.New(core)),
		WithSleeper(env.sleeper.Sleep),
		WithRunIDGenerator(testutil.NewFixedRunIDGenerator(testRunID)),
	}
	return New(r, cache, env.backend, append(base, opts...)...), env
}

// kanjiRange returns n distinct CJK ideographs starting at U+4E00.
func kanjiRange(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune(0x4E00 + i))
	}
	return out
}

// tsvOf builds a table whose rows carry the given kanji with indices 1..n.
func tsvOf(kanji []string) string {
	var b strings.Builder
	b.WriteString("kanji\tkeyword\tindex\n")
	for i, k := range kanji {
		fmt.Fprintf(&b, "%s\tkw%d\t%d\n", k, i+1, i+1)
	}
	return b.String()
}
