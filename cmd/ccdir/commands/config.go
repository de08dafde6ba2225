package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
)

var configJSON bool

func init() {
	configListCmd.Flags().BoolVar(&configJSON, "json", false, "output in JSON format")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ccdir configuration",
	Long: `Manage ccdir configuration stored in $XDG_CONFIG_HOME/ccdir/config.yaml.

Every key can also be set from the environment with the CCDIR_ prefix and
dots replaced by underscores (CCDIR_SERVER_ADDR). A .env file in the working
directory is read too. Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  ccdir config

  # Get a specific value
  ccdir config get server.addr

  # Set a value
  ccdir config set render.style dark

See Also: ccdir source`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigListWithWriter(cmd.OutOrStdout())
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys. Array values are printed one per line.`,
	Example: `  # Get the store driver
  ccdir config get store.driver

See Also: ccdir config set, ccdir config list`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGetWithWriter(cmd.OutOrStdout(), args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the file.

For list values like server.cors_origins, use comma-separated values. The
whole configuration is validated before it is written. Sources are managed
with 'ccdir source'.`,
	Example: `  # Serve on another port
  ccdir config set server.addr :9090

  # Publish to S3
  ccdir config set publish.driver s3
  ccdir config set publish.bucket my-directory

See Also: ccdir config get, ccdir config list`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigSetWithWriter(cmd.OutOrStdout(), args[0], args[1], config.FilePath())
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List the effective configuration in YAML format, defaults and environment included.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigListWithWriter(cmd.OutOrStdout())
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

A file with the default settings is created first when none exists. The
file is validated after the editor exits.`,
	Example: `  # Open with a specific editor
  EDITOR=nano ccdir config edit

See Also: ccdir config list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigEdit(cmd.Context(), config.FilePath())
	},
}

func runConfigGetWithWriter(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case map[string]any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "marshaling value")
		}
		fmt.Fprint(w, string(data))
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigSetWithWriter(w io.Writer, key, value, path string) error {
	if key == "sources" || strings.HasPrefix(key, "sources.") {
		return errors.NewUserError(errors.Newf("%s cannot be set directly", key),
			"Use: ccdir source add|remove")
	}

	switch key {
	case "server.cors_origins":
		viper.Set(key, splitList(value))
	default:
		viper.Set(key, value)
	}

	cfg, err := config.Current()
	if err != nil {
		return errors.NewUserError(err, "Check the value type for "+key)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return errors.NewUserError(errors.Join(errs...), "Run: ccdir config list")
	}
	if err := backupFiles(backup.ScopeConfig, []string{path}); err != nil {
		return errors.NewSystemError(err, "Check the backup directory")
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(w, "Set %s = %s\n", key, value)
	return nil
}

func runConfigListWithWriter(w io.Writer) error {
	cfg, err := config.Current()
	if err != nil {
		return err
	}
	if configJSON {
		return writeJSON(w, cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	fmt.Fprint(w, string(data))
	return nil
}

func runConfigEdit(ctx context.Context, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
	} else if err := backupFiles(backup.ScopeConfig, []string{path}); err != nil {
		return errors.NewSystemError(err, "Check the backup directory")
	}

	if err := openEditor(ctx, path); err != nil {
		return err
	}

	if _, err := config.Load(path); err != nil {
		return errors.NewConfigError(err)
	}
	return nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var items []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
