package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

func newGCCommand(opts *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Delete blobs no note refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, a *App) error {
				report, err := a.notes.SweepOrphans(ctx)
				if err != nil {
					return err
				}
				if verbose {
					for _, kind := range models.MediaKinds {
						for _, id := range report.Deleted[kind] {
							fmt.Fprintf(a.out, "%s %s\n", kind, id)
						}
					}
				}
				fmt.Fprintf(a.out, "removed %d blobs, kept %d, failed %d\n",
					report.DeletedCount(), report.Kept, report.Failed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every removed blob")
	return cmd
}
