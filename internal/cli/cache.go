package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kanjidex/internal/config"
	"github.com/roach88/kanjidex/internal/store"
)

// CacheStats is the payload of "cache stats".
type CacheStats struct {
	Location   string `json:"location"`
	Backend    string `json:"backend"`
	Entries    int    `json:"entries"`
	Generation int64  `json:"generation,omitempty"`
}

// String renders the stats for text output.
func (s CacheStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "location:   %s\n", s.Location)
	fmt.Fprintf(&b, "backend:    %s\n", s.Backend)
	fmt.Fprintf(&b, "entries:    %d", s.Entries)
	if s.Generation > 0 {
		fmt.Fprintf(&b, "\ngeneration: %d", s.Generation)
	}
	return b.String()
}

// CacheConversion is the payload of "cache convert".
type CacheConversion struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Entries int    `json:"entries"`
}

// String renders the conversion for text output.
func (c CacheConversion) String() string {
	return fmt.Sprintf("✓ Copied %d entries from %s to %s", c.Entries, c.From, c.To)
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and convert the stroke-count cache",
	}

	cmd.AddCommand(newCacheStatsCommand(rootOpts))
	cmd.AddCommand(newCacheConvertCommand(rootOpts))

	return cmd
}

func newCacheStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var path, backend string

	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show cache location and size",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(rootOpts, cmd, path, backend)
		},
	}

	cmd.Flags().StringVar(&path, "cache", "", "cache path (default from config)")
	cmd.Flags().StringVar(&backend, "cache-backend", "", "cache backend (json|sqlite)")

	return cmd
}

func runCacheStats(opts *RootOptions, cmd *cobra.Command, path, kind string) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfigInvalid, "failed to load config", err, "")
	}
	if path != "" {
		cfg.Cache.Path = path
	}
	if kind != "" {
		cfg.Cache.Backend = kind
	}

	b, err := store.OpenBackend(cfg.Cache.Backend, cfg.Cache.Path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to open cache", err, "")
	}
	defer store.CloseBackend(b)

	stats := CacheStats{
		Location: b.Location(),
		Backend:  backendKind(b),
		Entries:  b.Load().Len(),
	}
	if s, ok := b.(*store.Store); ok {
		stats.Generation = s.Generation()
	}
	return formatter.Success(stats)
}

func newCacheConvertCommand(rootOpts *RootOptions) *cobra.Command {
	var fromKind, toKind string

	cmd := &cobra.Command{
		Use:   "convert <from> <to>",
		Short: "Copy a cache between backends",
		Long: `Copy every entry of one cache into another, for example from the JSON
file into a SQLite database. Backends are inferred from the file extension
(.db, .sqlite, .sqlite3 mean SQLite) unless given explicitly.

Example:
  kanjidex cache convert scripts/stroke_count_cache.json strokes.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheConvert(rootOpts, cmd, args[0], args[1], fromKind, toKind)
		},
	}

	cmd.Flags().StringVar(&fromKind, "from-backend", "", "source backend (json|sqlite)")
	cmd.Flags().StringVar(&toKind, "to-backend", "", "destination backend (json|sqlite)")

	return cmd
}

func runCacheConvert(opts *RootOptions, cmd *cobra.Command, from, to, fromKind, toKind string) error {
	formatter := newFormatter(opts, cmd)

	// Load fails soft, so check the source exists to avoid copying nothing.
	if _, err := os.Stat(from); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cache not found: %s", from), err, "")
		}
		return formatter.fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("failed to read %s", from), err, "")
	}

	src, err := store.OpenBackend(fromKind, from)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to open source cache", err, "")
	}
	defer store.CloseBackend(src)

	dst, err := store.OpenBackend(toKind, to)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to open destination cache", err, "")
	}
	defer store.CloseBackend(dst)

	c := src.Load()
	if err := dst.Save(c); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to write destination cache", err, "")
	}

	return formatter.Success(CacheConversion{From: src.Location(), To: dst.Location(), Entries: c.Len()})
}

func backendKind(b store.Backend) string {
	if _, ok := b.(*store.Store); ok {
		return store.KindSQLite
	}
	return store.KindJSON
}
