package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/kanjidex/internal/config"
	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/record"
)

// EnrichOptions holds flags for the enrich command.
type EnrichOptions struct {
	*RootOptions
	ResolveOptions
	Dataset string
}

// NewEnrichCommand creates the enrich command.
func NewEnrichCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EnrichOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill in missing stroke counts in an existing dataset",
		Long: `Fill in stroke counts for records whose strokeCount is missing or zero.

Records that already have a count are left untouched and the dataset keeps
its order. The dataset is rewritten in place. With --limit only the first N
records are visited.

Example:
  kanjidex enrich
  kanjidex enrich --dataset public/data/kanji.json --limit 800`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(opts, cmd)
		},
	}

	opts.addFlags(cmd, true)
	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "dataset to enrich (default public/data/kanji.json)")

	return cmd
}

func runEnrich(opts *EnrichOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd, &opts.ResolveOptions, func(cfg *config.Config) {
		if opts.Dataset != "" {
			cfg.Output = opts.Dataset
		}
	})
	if err != nil {
		return err
	}
	defer s.Close()

	path := s.cfg.Output
	records, err := record.ReadFile(path)
	if err != nil {
		missing := pipeline.NewDatasetMissingError(path, err)
		return s.formatter.fail(ExitCommandError, string(missing.Code), missing.Message, err, "")
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	res, err := s.pipeline().Enrich(ctx, records)
	if err != nil {
		return s.formatter.fail(ExitCommandError, ErrCodeInterrupted, "enrich did not complete", err, "")
	}

	return writeRun(s, "enrich", path, res)
}
