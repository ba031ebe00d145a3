package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <note-id>",
		Short: "Move a note to the archive and unpin it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *App) error {
				if err := a.notes.Archive(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "archived %s\n", args[0])
				return nil
			})
		},
	}
}

func newRestoreCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <note-id>",
		Short: "Move an archived note back to the active list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *App) error {
				if err := a.notes.Restore(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "restored %s\n", args[0])
				return nil
			})
		},
	}
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete an archived note and all of its media for good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *App) error {
				if err := a.notes.PermanentlyDelete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
