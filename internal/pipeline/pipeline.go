package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/kanjidex/internal/archive"
	"github.com/roach88/kanjidex/internal/normalize"
	"github.com/roach88/kanjidex/internal/record"
	"github.com/roach88/kanjidex/internal/resolver"
	"github.com/roach88/kanjidex/internal/store"
)

// Defaults for a Pipeline.
const (
	DefaultPacing     = 150 * time.Millisecond
	DefaultFlushEvery = 50
)

// Stats counts what happened during a run.
type Stats struct {
	ArchivesRead       int  `json:"archives_read"`
	ArchivesMissing    int  `json:"archives_missing"`
	ArchivesUnreadable int  `json:"archives_unreadable"`
	Members            int  `json:"members"`
	MalformedMembers   int  `json:"malformed_members"`
	Rows               int  `json:"rows"`
	Skipped            int  `json:"skipped"`
	Duplicates         int  `json:"duplicates"`
	Accepted           int  `json:"accepted"`
	AlreadyCounted     int  `json:"already_counted"`
	CacheHits          int  `json:"cache_hits"`
	RemoteHits         int  `json:"remote_hits"`
	TableHits          int  `json:"table_hits"`
	Fallbacks          int  `json:"fallbacks"`
	RemoteAttempts     int  `json:"remote_attempts"`
	CacheSaves         int  `json:"cache_saves"`
	CacheSaveFailures  int  `json:"cache_save_failures"`
	Truncated          bool `json:"truncated"`
}

// Result is the outcome of a run.
type Result struct {
	Records []record.Record
	Stats   Stats
	RunID   string
}

// Pipeline builds and enriches datasets.
//
// A Pipeline may run several times; the cache carries over between runs.
// It is not safe for concurrent use.
type Pipeline struct {
	resolver   resolver.Resolver
	cache      *store.Cache
	backend    store.Backend
	logger     *zap.Logger
	sleep      resolver.Sleeper
	pacing     time.Duration
	flushEvery int
	fallback   int
	rowLimit   int
	runIDs     RunIDGenerator
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSleeper replaces the real sleep used for pacing.
func WithSleeper(s resolver.Sleeper) Option {
	return func(p *Pipeline) { p.sleep = s }
}

// WithPacing sets the pause after each lookup that reached the network.
//
// Default: 150ms (DefaultPacing). Zero disables pacing.
func WithPacing(d time.Duration) Option {
	return func(p *Pipeline) { p.pacing = d }
}

// WithFlushEvery sets how many records pass between cache saves.
// Values below 1 are ignored.
func WithFlushEvery(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.flushEvery = n
		}
	}
}

// WithFallback sets the stroke count used when resolution fails.
// Values below 1 are ignored.
func WithFallback(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.fallback = n
		}
	}
}

// WithRowLimit stops a run after n records (zero means unlimited).
//
// Extract stops accepting new records; Enrich only visits the first n
// positions and leaves the rest untouched.
func WithRowLimit(n int) Option {
	return func(p *Pipeline) { p.rowLimit = n }
}

// WithRunIDGenerator sets the run ID source (tests use a fixed one).
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(p *Pipeline) { p.runIDs = g }
}

// New creates a Pipeline.
//
// cache is the loaded stroke-count cache; nil starts empty. backend
// persists the cache and may be nil, in which case nothing is saved.
func New(r resolver.Resolver, cache *store.Cache, backend store.Backend, opts ...Option) *Pipeline {
	if cache == nil {
		cache = store.NewCache()
	}
	p := &Pipeline{
		resolver:   r,
		cache:      cache,
		backend:    backend,
		logger:     zap.NewNop(),
		sleep:      resolver.Sleep,
		pacing:     DefaultPacing,
		flushEvery: DefaultFlushEvery,
		fallback:   record.DefaultStrokeCount,
		runIDs:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cache returns the stroke-count cache the pipeline mutates.
func (p *Pipeline) Cache() *store.Cache {
	return p.cache
}

// run holds the state of one Extract or Enrich call.
type run struct {
	ctx    context.Context
	p      *Pipeline
	log    *zap.Logger
	stats  *Stats
	limit  *RowLimit
	result *Result
	seen   map[string]struct{}
}

func (p *Pipeline) newRun(ctx context.Context, phase string) *run {
	res := &Result{Records: []record.Record{}, RunID: p.runIDs.Generate()}
	return &run{
		ctx:    ctx,
		p:      p,
		log:    p.logger.With(zap.String("run_id", res.RunID), zap.String("phase", phase)),
		stats:  &res.Stats,
		limit:  NewRowLimit(p.rowLimit),
		result: res,
		seen:   make(map[string]struct{}),
	}
}

// Extract builds a dataset from the tables in the archives at paths.
//
// Archives are read in the given order and members in directory order;
// the first occurrence of a kanji wins. Missing or unreadable archives and
// malformed members are logged and skipped. The records are stably sorted
// by record.SortKey and the cache is saved before returning.
//
// If no path could be opened the result is empty and the error wraps
// ErrNoInput. If ctx is cancelled the cache is saved and ctx.Err() is
// returned.
func (p *Pipeline) Extract(ctx context.Context, paths []string) (*Result, error) {
	r := p.newRun(ctx, "extract")
	r.log.Info("extract starting",
		zap.Strings("archives", paths),
		zap.Int("cached", p.cache.Len()))

	usable := 0
	for _, path := range paths {
		err := archive.Scan(path, r.table)

		var oe *archive.OpenError
		if errors.As(err, &oe) {
			if oe.Missing() {
				r.stats.ArchivesMissing++
				r.log.Warn("archive not found, skipping", zap.String("archive", path))
			} else {
				r.stats.ArchivesUnreadable++
				r.log.Warn("archive unreadable, skipping", zap.String("archive", path), zap.Error(err))
			}
			continue
		}

		usable++
		r.stats.ArchivesRead++
		if IsLimitReached(err) {
			r.stats.Truncated = true
			r.log.Info("row limit reached", zap.Int("limit", p.rowLimit))
			break
		}
		if err != nil {
			r.saveCache()
			return nil, err
		}
	}

	if usable == 0 {
		r.log.Warn("no usable input archives", zap.Strings("archives", paths))
		return r.result, newNoInputError(paths)
	}

	record.Sort(r.result.Records)
	r.saveCache()

	r.log.Info("extract finished",
		zap.Int("records", len(r.result.Records)),
		zap.Int("fallbacks", r.stats.Fallbacks),
		zap.Int("cached", p.cache.Len()))
	return r.result, nil
}

// table reads one archive member. A malformed member stops only itself.
func (r *run) table(t *archive.Table) error {
	r.stats.Members++
	err := t.Each(r.row)

	var me *archive.MalformedError
	if errors.As(err, &me) {
		r.stats.MalformedMembers++
		r.log.Warn("malformed table, keeping rows read so far",
			zap.String("archive", me.Archive),
			zap.String("member", me.Member),
			zap.Error(me.Err))
		return nil
	}
	return err
}

// row handles one raw row of Extract: normalize, dedup, resolve, append.
// Skipped and duplicate rows have no side effects.
func (r *run) row(raw normalize.Row) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.stats.Rows++

	rec, ok := normalize.Normalize(raw, len(r.result.Records)+1)
	if !ok {
		r.stats.Skipped++
		return nil
	}
	if _, dup := r.seen[rec.Kanji]; dup {
		r.stats.Duplicates++
		return nil
	}
	if err := r.limit.Check(); err != nil {
		return err
	}
	r.seen[rec.Kanji] = struct{}{}

	if err := r.resolve(&rec); err != nil {
		return err
	}
	r.result.Records = append(r.result.Records, rec)
	r.stats.Accepted++

	if r.stats.Accepted%r.p.flushEvery == 0 {
		r.saveCache()
		r.log.Info("progress",
			zap.Int("accepted", r.stats.Accepted),
			zap.Int("cached", r.p.cache.Len()))
	}
	return nil
}

// Enrich fills in missing stroke counts on records.
//
// Records that already carry a positive count are kept as they are. Order
// and length are preserved; with a row limit only the first positions are
// visited. The input slice is not modified.
func (p *Pipeline) Enrich(ctx context.Context, records []record.Record) (*Result, error) {
	r := p.newRun(ctx, "enrich")
	r.result.Records = make([]record.Record, len(records))
	copy(r.result.Records, records)

	r.log.Info("enrich starting",
		zap.Int("records", len(records)),
		zap.Int("cached", p.cache.Len()))

	out := r.result.Records
	for i := range out {
		if err := ctx.Err(); err != nil {
			r.saveCache()
			return nil, err
		}
		if err := r.limit.Check(); err != nil {
			r.stats.Truncated = true
			r.log.Info("row limit reached", zap.Int("limit", p.rowLimit))
			break
		}
		r.stats.Rows++

		if out[i].HasStrokeCount() {
			r.stats.AlreadyCounted++
			continue
		}
		if err := r.resolve(&out[i]); err != nil {
			r.saveCache()
			return nil, err
		}
		r.stats.Accepted++

		if (i+1)%p.flushEvery == 0 {
			r.saveCache()
			r.log.Info("progress",
				zap.Int("position", i+1),
				zap.Int("total", len(out)),
				zap.Int("cached", p.cache.Len()))
		}
	}

	r.saveCache()
	r.log.Info("enrich finished",
		zap.Int("resolved", r.stats.Accepted),
		zap.Int("fallbacks", r.stats.Fallbacks),
		zap.Int("cached", p.cache.Len()))
	return r.result, nil
}

// resolve sets rec.StrokeCount, falling back when no resolver found one,
// then paces if the lookup reached the network.
//
// A cancelled context is returned as an error and rec is left unchanged.
func (r *run) resolve(rec *record.Record) error {
	l := r.p.resolver.Resolve(r.ctx, rec.Kanji, r.p.cache)
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.stats.RemoteAttempts += l.Attempts

	if l.Found() {
		rec.StrokeCount = l.Strokes
		switch l.Source {
		case resolver.SourceCache:
			r.stats.CacheHits++
		case resolver.SourceRemote:
			r.stats.RemoteHits++
		case resolver.SourceTable:
			r.stats.TableHits++
		}
	} else {
		rec.StrokeCount = r.p.fallback
		r.stats.Fallbacks++
		fields := []zap.Field{
			zap.String("kanji", rec.Kanji),
			zap.String("heisig_number", rec.HeisigNumber),
			zap.Int("fallback", r.p.fallback),
		}
		if l.Err != nil {
			fields = append(fields, zap.Error(l.Err))
		}
		r.log.Warn("stroke count unavailable, using fallback", fields...)
	}

	if l.Remote() && r.p.pacing > 0 {
		return r.p.sleep(r.ctx, r.p.pacing)
	}
	return nil
}

// saveCache persists the cache. Failures are logged and counted only.
func (r *run) saveCache() {
	b := r.p.backend
	if b == nil {
		return
	}
	if err := b.Save(r.p.cache); err != nil {
		r.stats.CacheSaveFailures++
		r.log.Warn("cache save failed", zap.Error(newCacheSaveError(b.Location(), err)))
		return
	}
	r.stats.CacheSaves++
}
