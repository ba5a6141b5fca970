package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kanjidex/internal/record"
	"github.com/roach88/kanjidex/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                     `json:"valid"`
	Records int                      `json:"records,omitempty"`
	Errors  []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <dataset>",
		Short: "Check a dataset file against the record schema",
		Long: `Validate a dataset file.

Every record is checked against the record schema (field types, positive
stroke count, no unknown fields). The dataset as a whole must have unique
kanji, unique ids and be sorted by Heisig number.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("dataset not found: %s", path), err, "")
		}
		return formatter.fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("failed to read %s", path), err, "")
	}
	formatter.VerboseLog("Validating %s (%d bytes)", path, len(data))

	if errs := schema.ValidateDataset(data); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	records, err := record.UnmarshalDataset(data)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("failed to decode %s", path), err, "")
	}
	return outputValidateSuccess(formatter, len(records))
}

// outputValidateSuccess outputs successful validation result.
func outputValidateSuccess(formatter *OutputFormatter, n int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Records: n})
	}

	fmt.Fprintf(formatter.Writer, "✓ Dataset valid (%d records)\n", n)
	return nil
}

// outputValidationErrors outputs validation errors in the appropriate format.
func outputValidationErrors(formatter *OutputFormatter, errs []schema.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
