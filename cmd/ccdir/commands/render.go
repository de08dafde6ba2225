package commands

import (
	"context"
	"io"
	"maps"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/render"
)

var (
	renderVars    []string
	renderExample string
)

func init() {
	renderCmd.Flags().StringArrayVar(&renderVars, "var", nil, "variable value as name=value (repeatable)")
	renderCmd.Flags().StringVar(&renderExample, "example", "", "start from the values of the named example")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <prompt-slug>",
	Short: "Fill in a prompt template",
	Long: `Render a prompt template with variable values and print the result.

Variables without a value take their declared default. A required variable
with neither is an error. --example seeds the values from one of the
template's worked examples; --var values override it.`,
	Example: `  # Provide a required variable
  ccdir render code-review --var code="$(cat main.go)"

  # Start from a worked example
  ccdir render code-review --example "Go handler" --var focus=security

  See Also: ccdir show`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRenderWithWriter(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

// runRenderWithWriter allows injecting a writer for testing.
func runRenderWithWriter(ctx context.Context, w io.Writer, slug string) error {
	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}
	tpl, err := c.Prompt(slug)
	if err != nil {
		return notFound(err, slug)
	}

	vars := map[string]string{}
	if renderExample != "" {
		found := false
		for _, ex := range tpl.Examples {
			if strings.EqualFold(ex.Title, renderExample) {
				maps.Copy(vars, ex.Variables)
				found = true
				break
			}
		}
		if !found {
			return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "example %q", renderExample),
				"Run: ccdir show "+slug)
		}
	}

	assigned, err := render.ParseAssignments(renderVars)
	if err != nil {
		return errors.NewUserError(err, "Use --var name=value")
	}
	maps.Copy(vars, assigned)

	out, err := render.Prompt(tpl, vars)
	if err != nil {
		if errors.Is(err, render.ErrMissingVariable) {
			return errors.NewUserError(err, "Run: ccdir show "+slug+" to see its variables")
		}
		return err
	}

	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return errors.Wrap(err, "writing output")
}
