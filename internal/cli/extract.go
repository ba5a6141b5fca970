package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kanjidex/internal/config"
	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/record"
)

// ExtractOptions holds flags for the extract command.
type ExtractOptions struct {
	*RootOptions
	ResolveOptions
	Output string
}

// RunSummary is the result payload of extract and enrich.
type RunSummary struct {
	Command     string         `json:"command"`
	Output      string         `json:"output"`
	Records     int            `json:"records"`
	Fingerprint string         `json:"fingerprint"`
	RunID       string         `json:"run_id"`
	Stats       pipeline.Stats `json:"stats"`
}

// String renders the summary for text output.
func (s RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s wrote %d records to %s\n", s.Command, s.Records, s.Output)
	fmt.Fprintf(&b, "  fingerprint: %s\n", s.Fingerprint)
	fmt.Fprintf(&b, "  run id:      %s\n", s.RunID)
	st := s.Stats
	if s.Command == "extract" {
		fmt.Fprintf(&b, "  archives:    %d read, %d missing, %d unreadable\n",
			st.ArchivesRead, st.ArchivesMissing, st.ArchivesUnreadable)
		fmt.Fprintf(&b, "  rows:        %d read, %d skipped, %d duplicate, %d malformed member(s)\n",
			st.Rows, st.Skipped, st.Duplicates, st.MalformedMembers)
	} else {
		fmt.Fprintf(&b, "  records:     %d visited, %d already counted\n", st.Rows, st.AlreadyCounted)
	}
	fmt.Fprintf(&b, "  strokes:     %d cached, %d remote, %d table, %d fallback\n",
		st.CacheHits, st.RemoteHits, st.TableHits, st.Fallbacks)
	if st.CacheSaveFailures > 0 {
		fmt.Fprintf(&b, "  cache:       %d save(s) failed\n", st.CacheSaveFailures)
	}
	if st.Truncated {
		fmt.Fprintf(&b, "  (stopped at the row limit)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtractOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extract [archives...]",
		Short: "Build the dataset from Heisig index archives",
		Long: `Build the kanji dataset from the TSV/CSV tables inside ZIP archives.

Archives are read in the order given (default: heisig-rtk-index.zip and
heisig-rtk-index-4.zip). The first occurrence of each kanji wins. Missing
archives are skipped with a warning; if none can be read the command fails.

Example:
  kanjidex extract
  kanjidex extract --offline --out /tmp/kanji.json rtk.zip
  kanjidex extract --cache strokes.db --limit 800`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(opts, args, cmd)
		},
	}

	opts.addFlags(cmd, true)
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "dataset output path (default public/data/kanji.json)")

	return cmd
}

func runExtract(opts *ExtractOptions, args []string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd, &opts.ResolveOptions, func(cfg *config.Config) {
		if opts.Output != "" {
			cfg.Output = opts.Output
		}
		if len(args) > 0 {
			cfg.Archives = args
		}
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	res, err := s.pipeline().Extract(ctx, s.cfg.Archives)
	if err != nil {
		traceID := ""
		if res != nil {
			traceID = res.RunID
		}
		if pipeline.IsNoInput(err) {
			return s.formatter.fail(ExitCommandError, string(pipeline.ErrCodeNoInput),
				fmt.Sprintf("no input archive could be read: %s", strings.Join(s.cfg.Archives, ", ")), err, traceID)
		}
		return s.formatter.fail(ExitCommandError, ErrCodeInterrupted, "extract did not complete", err, traceID)
	}

	return writeRun(s, "extract", s.cfg.Output, res)
}

// writeRun writes res to path and prints the summary.
func writeRun(s *session, command, path string, res *pipeline.Result) error {
	if err := record.WriteFile(path, res.Records); err != nil {
		return s.formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to write dataset", err, res.RunID)
	}

	fp, err := record.Fingerprint(res.Records)
	if err != nil {
		return s.formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to fingerprint dataset", err, res.RunID)
	}

	return s.formatter.SuccessWithTrace(RunSummary{
		Command:     command,
		Output:      path,
		Records:     len(res.Records),
		Fingerprint: fp,
		RunID:       res.RunID,
		Stats:       res.Stats,
	}, res.RunID)
}
