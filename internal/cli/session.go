package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/kanjidex/internal/config"
	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/resolver"
	"github.com/roach88/kanjidex/internal/store"
)

// ResolveOptions holds the cache and resolver flags shared by extract,
// enrich and lookup. Empty values leave the configured setting alone.
type ResolveOptions struct {
	CachePath    string
	CacheBackend string
	Resolver     string
	BaseURL      string
	Offline      bool
	Limit        int
}

func (o *ResolveOptions) addFlags(cmd *cobra.Command, withLimit bool) {
	cmd.Flags().StringVar(&o.CachePath, "cache", "", "stroke-count cache path (default scripts/stroke_count_cache.json)")
	cmd.Flags().StringVar(&o.CacheBackend, "cache-backend", "", "cache backend (json|sqlite); inferred from --cache when empty")
	cmd.Flags().StringVar(&o.Resolver, "resolver", "", "stroke-count source (kanjivg|table|chain)")
	cmd.Flags().StringVar(&o.BaseURL, "base-url", "", "KanjiVG URL template with one %s for the hex code point")
	cmd.Flags().BoolVar(&o.Offline, "offline", false, "never touch the network (same as --resolver table)")
	if withLimit {
		cmd.Flags().IntVar(&o.Limit, "limit", 0, "process at most N records (0 = no limit)")
	}
}

// apply overlays explicitly set flags onto cfg.
func (o *ResolveOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if o.CachePath != "" {
		cfg.Cache.Path = o.CachePath
	}
	if o.CacheBackend != "" {
		cfg.Cache.Backend = o.CacheBackend
	}
	if o.Resolver != "" {
		cfg.Resolver.Mode = o.Resolver
	}
	if o.BaseURL != "" {
		cfg.Resolver.BaseURL = o.BaseURL
	}
	if o.Offline {
		cfg.Resolver.Mode = config.ModeTable
	}
	if f := cmd.Flags().Lookup("limit"); f != nil && f.Changed {
		cfg.Limit = o.Limit
	}
}

// session is the state shared by commands that resolve stroke counts.
type session struct {
	root      *RootOptions
	cfg       *config.Config
	formatter *OutputFormatter
	logger    *zap.Logger
	backend   store.Backend
	cache     *store.Cache
	resolver  resolver.Resolver
}

// openSession loads config, applies flags, and opens the logger, cache
// and resolver. The returned error is already reported through the
// formatter.
func openSession(root *RootOptions, cmd *cobra.Command, ro *ResolveOptions, override func(*config.Config)) (*session, error) {
	f := newFormatter(root, cmd)

	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeConfigInvalid, "failed to load config", err, "")
	}
	if ro != nil {
		ro.apply(cmd, cfg)
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeConfigInvalid, "invalid configuration", err, "")
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Logging.Level, root.Verbose, root.Format)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeConfigInvalid, "invalid logging level", err, "")
	}

	backend, err := store.OpenBackend(cfg.Cache.Backend, cfg.Cache.Path)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeGeneric, "failed to open cache", err, "")
	}
	cache := backend.Load()
	logger.Debug("cache loaded",
		zap.String("location", backend.Location()),
		zap.Int("entries", cache.Len()))

	return &session{
		root:      root,
		cfg:       cfg,
		formatter: f,
		logger:    logger,
		backend:   backend,
		cache:     cache,
		resolver:  buildResolver(cfg, logger, root),
	}, nil
}

// Close releases the cache backend and flushes the logger.
func (s *session) Close() {
	if err := store.CloseBackend(s.backend); err != nil {
		s.logger.Warn("error closing cache", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// pipeline builds a pipeline over the session's resolver and cache.
func (s *session) pipeline() *pipeline.Pipeline {
	opts := []pipeline.Option{
		pipeline.WithLogger(s.logger),
		pipeline.WithPacing(s.cfg.GetPacing()),
		pipeline.WithFlushEvery(s.cfg.FlushEvery),
		pipeline.WithFallback(s.cfg.Fallback),
		pipeline.WithRowLimit(s.cfg.Limit),
	}
	if s.root.RunIDs != nil {
		opts = append(opts, pipeline.WithRunIDGenerator(s.root.RunIDs))
	}
	if s.root.Sleeper != nil {
		opts = append(opts, pipeline.WithSleeper(s.root.Sleeper))
	}
	return pipeline.New(s.resolver, s.cache, s.backend, opts...)
}

// buildResolver returns the resolver for cfg.Resolver.Mode.
func buildResolver(cfg *config.Config, logger *zap.Logger, root *RootOptions) resolver.Resolver {
	switch cfg.Resolver.Mode {
	case config.ModeTable:
		return resolver.NewTable(nil)
	case config.ModeChain:
		return resolver.Chain{resolver.NewTable(nil), newKanjiVG(cfg, logger, root)}
	default:
		return newKanjiVG(cfg, logger, root)
	}
}

func newKanjiVG(cfg *config.Config, logger *zap.Logger, root *RootOptions) *resolver.KanjiVG {
	opts := []resolver.KanjiVGOption{
		resolver.WithBaseURL(cfg.Resolver.BaseURL),
		resolver.WithMaxAttempts(cfg.Resolver.MaxAttempts),
		resolver.WithTimeout(cfg.GetTimeout()),
		resolver.WithRetryDelay(cfg.GetRetryDelay()),
		resolver.WithLogger(logger),
	}
	if root.HTTPClient != nil {
		opts = append(opts, resolver.WithHTTPClient(root.HTTPClient))
	}
	if root.Sleeper != nil {
		opts = append(opts, resolver.WithSleeper(root.Sleeper))
	}
	return resolver.NewKanjiVG(opts...)
}

// signalContext derives a context from cmd that is cancelled on SIGINT or
// SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
