package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/resolver"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to pipeline.UUIDv7Generator.
	RunIDs pipeline.RunIDGenerator

	// Sleeper overrides retry and pacing sleeps (for testing).
	Sleeper resolver.Sleeper

	// HTTPClient overrides the client used for KanjiVG (for testing).
	HTTPClient *http.Client
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kanjidex CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, so tests
// can inject the RunIDs, Sleeper and HTTPClient hooks.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kanjidex",
		Short: "kanjidex - build the kanji study dataset",
		Long: `Build the kanji study dataset from Heisig index archives.

extract reads the TSV/CSV tables inside one or more ZIP archives, keeps the
first occurrence of each kanji, resolves stroke counts from KanjiVG (with a
local cache) and writes the records sorted by Heisig number.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	// Add subcommands
	cmd.AddCommand(NewExtractCommand(opts))
	cmd.AddCommand(NewEnrichCommand(opts))
	cmd.AddCommand(NewLookupCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the formatter for cmd's writers.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
