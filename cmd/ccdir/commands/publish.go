package commands

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/blob"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/export"
	"github.com/thoreinstein/ccdir/internal/logging"
)

var (
	publishFormat string
	publishKey    string
)

func init() {
	publishCmd.Flags().StringVarP(&publishFormat, "format", "f", "json", "json, yaml or toml")
	publishCmd.Flags().StringVar(&publishKey, "key", "", "object key (default: publish.key with the format's extension)")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload an export bundle to the configured blob store",
	Long: `Encode the catalog as a bundle and store it with the publish.* settings:
a local directory (publish.driver=fs) or an S3 bucket (publish.driver=s3,
credentials from the standard AWS chain). The object URL is printed.`,
	Example: `  # Publish to the default directory
  ccdir publish

  # YAML to an S3-compatible endpoint
  CCDIR_PUBLISH_DRIVER=s3 CCDIR_PUBLISH_BUCKET=site ccdir publish -f yaml

  See Also: ccdir export`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPublishWithWriter(cmd.Context(), cmd.OutOrStdout())
	},
}

// runPublishWithWriter allows injecting a writer for testing.
func runPublishWithWriter(ctx context.Context, w io.Writer) error {
	format, err := export.ParseFormat(publishFormat)
	if err != nil || format == export.FormatMarkdown {
		return errors.NewUserError(errors.Wrapf(export.ErrUnknownFormat, "%q", publishFormat),
			"Valid formats: json, yaml, toml")
	}

	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}
	data, err := export.Encode(export.FromCatalog(c, time.Now().UTC()), format)
	if err != nil {
		return err
	}

	cfg := currentConfig().Publish
	key := publishKey
	if key == "" {
		key = strings.TrimSuffix(cfg.Key, path.Ext(cfg.Key)) + format.Extension()
	}

	store, err := blob.New(ctx, cfg)
	if err != nil {
		return errors.NewConfigError(err)
	}
	url, err := store.Put(ctx, key, data, blob.ContentType(format.Extension()))
	if err != nil {
		return errors.NewSystemError(err, "Check the publish.* settings")
	}

	logging.FromContext(ctx).Info("bundle published", "driver", cfg.Driver, "bytes", len(data))
	fmt.Fprintln(w, url)
	return nil
}
