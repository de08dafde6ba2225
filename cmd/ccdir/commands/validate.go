package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/validator"
)

var (
	validateJSON   bool
	validateStrict bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the report as JSON")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "treat warnings as errors")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every record against the content rules",
	Long: `Validate the merged catalog.

Each record is checked for required fields, known enums, slug format, dates,
URLs, prompt variable consistency and JSON schema conformance. Across records,
duplicate ids and slugs and unknown categories are reported, as are files that
failed to load. Errors make the command exit non-zero; warnings do so only
with --strict.`,
	Example: `  # Check all sources
  ccdir validate

  # Machine-readable report for CI
  ccdir validate --json --strict

  See Also: ccdir source list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runValidateWithWriter(cmd.Context(), cmd.OutOrStdout())
	},
}

// runValidateWithWriter allows injecting a writer for testing.
func runValidateWithWriter(ctx context.Context, w io.Writer) error {
	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	v, err := validator.NewCorpusValidator()
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	result := v.Validate(c)

	format := validator.FormatText
	if validateJSON {
		format = validator.FormatJSON
	}
	if err := validator.NewReporter(w, format).Report(result); err != nil {
		return err
	}

	if err := result.Err(); err != nil {
		return errors.NewUserError(err, "Fix the errors listed above")
	}
	if validateStrict && result.HasWarnings() {
		return errors.NewUserError(errors.Wrapf(errors.ErrValidationFailed, "%d warning(s)", len(result.Warnings())),
			"Fix the warnings or drop --strict")
	}
	return nil
}
