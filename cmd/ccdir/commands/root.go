// Package commands implements the CLI commands for ccdir.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/cmd"
	"github.com/thoreinstein/ccdir/cmd/ccdir/commands/source"
	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// appConfig is the configuration loaded before every command runs.
var appConfig *config.Config

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: $XDG_CONFIG_HOME/ccdir/config.yaml)")

	rootCmd.Version = cmd.Info().Version
	backup.Version = rootCmd.Version
	rootCmd.SetVersionTemplate("ccdir version {{.Version}}\n")

	// Errors are printed by main together with their suggestion.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(source.Cmd)
}

var rootCmd = &cobra.Command{
	Use:   "ccdir",
	Short: "Browse the Claude Code directory of configs, prompts and tools",
	Long: `ccdir is a directory of Claude Code resources: Claude.md project
configurations, reusable prompt templates and tools.

The built-in corpus ships inside the binary. Additional content trees can be
added from git repositories or local directories with 'ccdir source add'.
Every command reads the merged catalog; 'ccdir serve' and 'ccdir mcp' expose
it over HTTP and the Model Context Protocol.`,
	Example: `  # Find prompts about testing
  ccdir search testing --type prompt

  # Read a Claude.md config
  ccdir show nextjs-typescript

  # Fill in a prompt template
  ccdir render code-review --var language=Go

  See Also: ccdir list, ccdir validate, ccdir serve`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("--quiet and --verbose are mutually exclusive"),
			"Use one of -q or -v")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("CCDIR_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2
				case "2":
					v = 3
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{Level: level}

	var primary slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primary = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case logging.FormatText:
		primary = logging.NewHandler(cmd.ErrOrStderr(), opts)
	default:
		return errors.NewUserError(errors.Newf("unknown log format %q", logFormat),
			"Use --log-format text or --log-format json")
	}

	handlers := []slog.Handler{primary}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "opening log file"), "Check the --log-file path")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	handler := logging.Tee(handlers...)

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// loadConfig reads the config file and environment into appConfig.
func loadConfig(cmd *cobra.Command) error {
	// version and help must work with a broken config.
	if cmd.Name() == "version" || cmd.Name() == "help" {
		appConfig = config.Default()
		return nil
	}

	config.Init()
	cfg, err := config.Load(configFile)
	if err != nil {
		return errors.NewConfigError(err)
	}
	appConfig = cfg
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
