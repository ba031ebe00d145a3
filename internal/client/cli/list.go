package cli

import (
	"context"
	"slices"

	"github.com/spf13/cobra"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var (
		archived bool
		search   string
		tag      string
		format   string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "l"},
		Short:   "List notes, pinned first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return opts.run(cmd, func(_ context.Context, a *App) error {
				a.notes.SetSearchTerm(search)
				a.notes.SetTagFilter(tag)
				if archived {
					return writeNotes(a.out, format, a.notes.ListArchived())
				}
				pinned, others := a.notes.Partition()
				return writeNotes(a.out, format, slices.Concat(pinned, others))
			})
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&archived, "archived", "a", false, "list archived notes")
	f.StringVarP(&search, "search", "s", "", "case-insensitive substring of the content")
	f.StringVarP(&tag, "tag", "t", "", "exact tag")
	f.StringVarP(&format, "output", "o", formatText, "output format: text, json or yaml")
	return cmd
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	var (
		archived bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "show <note-id>",
		Short: "Show one note with its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return opts.run(cmd, func(_ context.Context, a *App) error {
				n, err := a.notes.Note(args[0], archived)
				if err != nil {
					return err
				}
				return writeNote(a.out, format, n)
			})
		},
	}

	cmd.Flags().BoolVarP(&archived, "archived", "a", false, "look in archived notes")
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format: text, json or yaml")
	return cmd
}
