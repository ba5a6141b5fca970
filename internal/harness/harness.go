package harness

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/record"
	"github.com/roach88/kanjidex/internal/resolver"
	"github.com/roach88/kanjidex/internal/store"
	"github.com/roach88/kanjidex/internal/testutil"
)

// Harness holds the per-scenario environment.
type Harness struct {
	dir     string
	backend *recordingBackend
	sleeper *testutil.FakeSleeper
	runIDs  *testutil.FixedRunIDGenerator
	logger  *zap.Logger
	remote  *httptest.Server
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary directory with a fresh cache.
// Execution flow:
// 1. Build the archives (or the input dataset)
// 2. Start the KanjiVG stand-in if the scenario has remote counts
// 3. Run the pipeline phase
// 4. Check the expected error and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, zap.NewNop())
}

// RunWithLogger is Run with the pipeline logging to logger.
func RunWithLogger(scenario *Scenario, logger *zap.Logger) (*Result, error) {
	dir, err := os.MkdirTemp("", "kanjidex-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	h := &Harness{
		dir:     dir,
		backend: &recordingBackend{},
		sleeper: testutil.NewFakeSleeper(),
		runIDs:  testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger:  logger,
	}
	if scenario.Remote != nil {
		h.remote = newKanjiVGServer(scenario.Remote)
		defer h.remote.Close()
	}

	p := h.pipeline(scenario)

	ctx := context.Background()
	var res *pipeline.Result
	var runErr error
	switch scenario.Phase {
	case PhaseEnrich:
		input := make([]record.Record, len(scenario.Dataset))
		for i, f := range scenario.Dataset {
			input[i] = f.Record()
		}
		res, runErr = p.Enrich(ctx, input)
	default:
		paths, err := h.buildArchives(scenario.Archives)
		if err != nil {
			return nil, fmt.Errorf("failed to build archives: %w", err)
		}
		res, runErr = p.Extract(ctx, paths)
	}

	result := NewResult()
	if res != nil {
		result.Records = res.Records
		result.Stats = res.Stats
		result.RunID = res.RunID
	}
	result.Cache = h.backend.last
	result.Saves = h.backend.saves
	result.Sleeps = h.sleeper.Calls()

	if runErr != nil {
		code := pipeline.CodeOf(runErr)
		if code == "" {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, runErr)
		}
		result.ErrorCode = string(code)
	}
	if result.ErrorCode != scenario.ExpectError {
		result.AddError(fmt.Sprintf("expected error %q, got %q", scenario.ExpectError, result.ErrorCode))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, pacingOf(scenario)) {
		result.AddError(msg)
	}

	return result, nil
}

// pipeline builds the pipeline for scenario.
func (h *Harness) pipeline(scenario *Scenario) *pipeline.Pipeline {
	opts := []pipeline.Option{
		pipeline.WithLogger(h.logger),
		pipeline.WithSleeper(h.sleeper.Sleep),
		pipeline.WithRunIDGenerator(h.runIDs),
		pipeline.WithPacing(pacingOf(scenario)),
		pipeline.WithRowLimit(scenario.Options.Limit),
	}
	if scenario.Options.FlushEvery > 0 {
		opts = append(opts, pipeline.WithFlushEvery(scenario.Options.FlushEvery))
	}
	if scenario.Options.Fallback > 0 {
		opts = append(opts, pipeline.WithFallback(scenario.Options.Fallback))
	}

	cache := store.NewCacheFrom(scenario.Cache)
	return pipeline.New(h.resolver(scenario), cache, h.backend, opts...)
}

// resolver picks the stroke source: the table, the KanjiVG stand-in, or
// the table chained before it.
func (h *Harness) resolver(scenario *Scenario) resolver.Resolver {
	if h.remote == nil {
		return resolver.NewTable(scenario.Table)
	}
	kvg := resolver.NewKanjiVG(
		resolver.WithBaseURL(h.remote.URL+"/kanji/%s.svg"),
		resolver.WithHTTPClient(h.remote.Client()),
		resolver.WithSleeper(h.sleeper.Sleep),
		resolver.WithLogger(h.logger),
		resolver.WithTimeout(5*time.Second),
	)
	if scenario.Table == nil {
		return kvg
	}
	return resolver.Chain{resolver.NewTable(scenario.Table), kvg}
}

// buildArchives writes fixtures into the scenario dir and returns their
// paths in order.
func (h *Harness) buildArchives(fixtures []ArchiveFixture) ([]string, error) {
	paths := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		path := filepath.Join(h.dir, f.Name)
		paths = append(paths, path)
		if f.Missing {
			continue
		}

		data := []byte(f.Raw)
		if f.Raw == "" {
			var err error
			data, err = testutil.BuildZip(f.Members...)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			if f.Corrupt != "" {
				if err := testutil.FlipMarker(data, f.Corrupt); err != nil {
					return nil, fmt.Errorf("%s: %w", f.Name, err)
				}
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func pacingOf(scenario *Scenario) time.Duration {
	if scenario.Options.Pacing == "" {
		return pipeline.DefaultPacing
	}
	d, err := time.ParseDuration(scenario.Options.Pacing)
	if err != nil || d < 0 {
		return pipeline.DefaultPacing
	}
	return d
}

// recordingBackend keeps the last saved snapshot in memory.
type recordingBackend struct {
	last  map[string]int
	saves int
}

func (b *recordingBackend) Load() *store.Cache {
	return store.NewCacheFrom(b.last)
}

func (b *recordingBackend) Save(c *store.Cache) error {
	b.last = c.Snapshot()
	b.saves++
	return nil
}

func (b *recordingBackend) Location() string {
	return "memory"
}

// newKanjiVGServer serves KanjiVG-style SVGs with counts[kanji] strokes.
func newKanjiVGServer(counts map[string]int) *httptest.Server {
	byPath := make(map[string]int, len(counts))
	for kanji, n := range counts {
		hex, err := resolver.CodePointHex(kanji)
		if err != nil {
			continue
		}
		byPath["/kanji/"+hex+".svg"] = n
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, ok := byPath[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var b strings.Builder
		b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"><g id="kvg:StrokePaths">`)
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, `<path id="kvg:s%d" d="M%d,0"/>`, i+1, i)
		}
		b.WriteString(`</g></svg>`)
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(b.String()))
	}))
}
