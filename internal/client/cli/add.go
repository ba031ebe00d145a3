package cli

import (
	"bufio"
	"context"

	"github.com/spf13/cobra"
)

func newAddCommand(opts *rootOptions) *cobra.Command {
	var (
		content string
		tags    []string
		files   []string
		pin     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Long: `Create a note and print its id.

Without --message the content is read from stdin up to the first empty line.
Files given with --file are attached; their kind is taken from the MIME type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("message") {
				text, err := GetMultiline(bufio.NewReader(cmd.InOrStdin()), "", cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				content = text
			}

			return opts.run(cmd, func(ctx context.Context, a *App) error {
				if _, err := a.notes.OpenForCreate(); err != nil {
					return err
				}
				return a.withDraft(ctx, func() error {
					if err := a.notes.SetContent(content); err != nil {
						return err
					}
					for _, t := range tags {
						if err := a.notes.AddTag(t); err != nil {
							return err
						}
					}
					for _, f := range files {
						if _, err := a.attach(ctx, f); err != nil {
							return err
						}
					}
					if pin {
						return a.notes.TogglePin()
					}
					return nil
				})
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&content, "message", "m", "", "note content")
	f.StringArrayVarP(&tags, "tag", "t", nil, "tag to add (repeatable)")
	f.StringArrayVarP(&files, "file", "f", nil, "media file to attach (repeatable)")
	f.BoolVarP(&pin, "pin", "p", false, "pin the note")
	return cmd
}
