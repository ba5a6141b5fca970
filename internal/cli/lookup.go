package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/kanjidex/internal/resolver"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	ResolveOptions
}

// LookupEntry is one resolved character.
type LookupEntry struct {
	Kanji    string `json:"kanji"`
	Strokes  int    `json:"strokes"`
	Source   string `json:"source"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// LookupResult is the payload of the lookup command.
type LookupResult struct {
	Entries []LookupEntry `json:"entries"`
}

// String renders one line per character for text output.
func (r LookupResult) String() string {
	var b strings.Builder
	for _, e := range r.Entries {
		if e.Strokes > 0 {
			fmt.Fprintf(&b, "%s\t%d\t%s\n", e.Kanji, e.Strokes, e.Source)
		} else {
			fmt.Fprintf(&b, "%s\t-\t%s\t%s\n", e.Kanji, e.Source, e.Error)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup <kanji>...",
		Short: "Resolve stroke counts for individual characters",
		Long: `Resolve the stroke count of each argument through the cache and the
configured resolver, and print it. New counts are saved to the cache.

Exits 1 if any character could not be resolved.

Example:
  kanjidex lookup 一 二 三
  kanjidex lookup --offline 口`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(opts, args, cmd)
		},
	}

	opts.addFlags(cmd, false)

	return cmd
}

func runLookup(opts *LookupOptions, args []string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd, &opts.ResolveOptions, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	sleep := resolver.Sleep
	if s.root.Sleeper != nil {
		sleep = s.root.Sleeper
	}

	result := LookupResult{Entries: make([]LookupEntry, 0, len(args))}
	learned, unresolved := 0, 0
	for i, kanji := range args {
		l := s.resolver.Resolve(ctx, kanji, s.cache)
		entry := LookupEntry{
			Kanji:    kanji,
			Strokes:  l.Strokes,
			Source:   string(l.Source),
			Attempts: l.Attempts,
		}
		if !l.Found() {
			unresolved++
			if l.Err != nil {
				entry.Error = l.Err.Error()
			}
		}
		if l.Source == resolver.SourceRemote {
			learned++
		}
		result.Entries = append(result.Entries, entry)

		if l.Remote() && i < len(args)-1 {
			if err := sleep(ctx, s.cfg.GetPacing()); err != nil {
				return s.formatter.fail(ExitCommandError, ErrCodeInterrupted, "lookup did not complete", err, "")
			}
		}
	}

	if learned > 0 {
		if err := s.backend.Save(s.cache); err != nil {
			s.logger.Warn("cache save failed", zap.String("location", s.backend.Location()), zap.Error(err))
		}
	}

	if err := s.formatter.Success(result); err != nil {
		return err
	}
	if unresolved > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("[%s] %d character(s) not resolved", ErrCodeUnresolved, unresolved))
	}
	return nil
}
