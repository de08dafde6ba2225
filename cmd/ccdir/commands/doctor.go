package commands

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/doctor"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/paths"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false, "suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false, "show detailed check-by-check output")
	doctorCmd.MarkFlagsMutuallyExclusive("json", "quiet", "verbose")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Run diagnostic checks on the ccdir setup.

Validates the config file, checks that every content source is present on
disk, looks for git, and loads the catalog to report files that fail to
parse.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDoctorWithWriter(cmd.Context(), cmd.OutOrStdout(), config.FilePath())
	},
}

// errDoctorWarnings and errDoctorErrors carry the doctor exit codes.
var (
	errDoctorWarnings = errors.New("doctor found warnings")
	errDoctorErrors   = errors.New("doctor found errors")
)

// runDoctorWithWriter allows injecting a writer for testing.
func runDoctorWithWriter(ctx context.Context, w io.Writer, configPath string) error {
	cfg := currentConfig()
	runner := doctor.NewRunner(
		&doctor.ConfigCheck{Path: configPath},
		&doctor.SourcesCheck{Config: cfg, CacheDir: paths.SourcesCacheDir()},
		&doctor.GitCheck{Config: cfg},
		&doctor.CacheCheck{Dir: paths.SourcesCacheDir()},
		&doctor.CatalogCheck{Load: catalogLoader(cfg, logging.FromContext(ctx))},
	)
	report := runner.Run(ctx)

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	switch report.Worst() {
	case doctor.SeverityError:
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	case doctor.SeverityWarning:
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	switch {
	case doctorQuiet:
		return nil
	case doctorJSON:
		return writeJSON(w, report)
	}

	shown := report.AtLeast(doctor.SeverityWarning)
	if doctorVerbose {
		shown = report.Results
	}
	for _, res := range shown {
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(res.Status), res.Category, res.Name, res.Message)
		if res.Hint != "" && res.Status >= doctor.SeverityWarning {
			fmt.Fprintf(w, "  hint: %s\n", res.Hint)
		}
		if doctorVerbose {
			for _, k := range slices.Sorted(maps.Keys(res.Details)) {
				fmt.Fprintf(w, "    %s: %v\n", k, res.Details[k])
			}
		}
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return green("✓")
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}
