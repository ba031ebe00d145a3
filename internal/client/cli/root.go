package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/clipnote/internal/client/config"
	"github.com/dmitrijs2005/clipnote/internal/common"
)

// rootOptions holds the persistent flags. They override the config file
// only when set explicitly.
type rootOptions struct {
	configPath string
	dataDir    string
	blobDriver string
	bucketURL  string
	eventsURL  string
	logLevel   string
}

// NewRootCommand assembles the clipnote command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   common.AppName,
		Short: "ClipNote keeps text notes with video, image and audio attachments",
		Long: `ClipNote is a local note store. Notes carry free text, tags and media
attachments, can be pinned, archived, restored and deleted for good.
Media lives in a blob store next to the notes database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (JSON or YAML)")
	pf.StringVarP(&opts.dataDir, "data-dir", "d", "", "directory holding the database and blobs")
	pf.StringVar(&opts.blobDriver, "blob-driver", "", "blob store driver: sqlite or bucket")
	pf.StringVar(&opts.bucketURL, "bucket-url", "", "gocloud.dev bucket URL for the bucket driver")
	pf.StringVar(&opts.eventsURL, "events-url", "", "gocloud.dev pubsub topic URL for lifecycle events")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newListCommand(opts),
		newShowCommand(opts),
		newAddCommand(opts),
		newEditCommand(opts),
		newArchiveCommand(opts),
		newRestoreCommand(opts),
		newDeleteCommand(opts),
		newMediaCommand(opts),
		newGCCommand(opts),
		newShellCommand(opts),
		newVersionCommand(),
	)
	return root
}

// loadConfig layers defaults, the config file and explicitly set flags.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	overrides := []struct {
		name string
		dst  *string
		val  string
	}{
		{"data-dir", &cfg.DataDir, o.dataDir},
		{"blob-driver", &cfg.BlobDriver, o.blobDriver},
		{"bucket-url", &cfg.BucketURL, o.bucketURL},
		{"events-url", &cfg.EventsURL, o.eventsURL},
		{"log-level", &cfg.LogLevel, o.logLevel},
	}
	for _, ov := range overrides {
		if flags.Changed(ov.name) {
			*ov.dst = ov.val
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run opens the application for one command and closes it afterwards.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := NewApp(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)
	if err := a.Close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
