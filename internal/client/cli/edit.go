package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type editOptions struct {
	archived    bool
	content     string
	addTags     []string
	removeTags  []string
	files       []string
	removeMedia []string
	renames     []string
	togglePin   bool
}

func newEditCommand(opts *rootOptions) *cobra.Command {
	eo := &editOptions{}

	cmd := &cobra.Command{
		Use:   "edit <note-id>",
		Short: "Edit a note and save it",
		Long: `Open a note, apply the requested changes in order and save it.

Changes are applied as: content, tags, removals, renames, attachments, pin.
If any step fails the note is left as it was, except for audio removals,
which take effect immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changeContent := cmd.Flags().Changed("message")
			return opts.run(cmd, func(ctx context.Context, a *App) error {
				if _, err := a.notes.OpenForEdit(ctx, args[0], eo.archived); err != nil {
					return err
				}
				return a.withDraft(ctx, func() error {
					return eo.apply(ctx, a, changeContent)
				})
			})
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&eo.archived, "archived", "a", false, "edit an archived note")
	f.StringVarP(&eo.content, "message", "m", "", "replace the content")
	f.StringArrayVarP(&eo.addTags, "tag", "t", nil, "tag to add (repeatable)")
	f.StringArrayVar(&eo.removeTags, "untag", nil, "tag to remove (repeatable)")
	f.StringArrayVarP(&eo.files, "file", "f", nil, "media file to attach (repeatable)")
	f.StringArrayVar(&eo.removeMedia, "remove-media", nil, "media id to detach (repeatable)")
	f.StringArrayVar(&eo.renames, "rename-audio", nil, "rename an audio item, as id=name (repeatable)")
	f.BoolVar(&eo.togglePin, "toggle-pin", false, "flip the pinned flag")
	return cmd
}

func (eo *editOptions) apply(ctx context.Context, a *App, changeContent bool) error {
	if changeContent {
		if err := a.notes.SetContent(eo.content); err != nil {
			return err
		}
	}
	for _, t := range eo.addTags {
		if err := a.notes.AddTag(t); err != nil {
			return err
		}
	}
	for _, t := range eo.removeTags {
		if err := a.notes.RemoveTag(t); err != nil {
			return err
		}
	}
	for _, id := range eo.removeMedia {
		if err := a.notes.RemoveMedia(ctx, id); err != nil {
			return err
		}
	}
	for _, r := range eo.renames {
		id, name, err := splitAssignment(r)
		if err != nil {
			return err
		}
		if err := a.notes.RenameAudio(id, name); err != nil {
			return err
		}
	}
	for _, f := range eo.files {
		if _, err := a.attach(ctx, f); err != nil {
			return err
		}
	}
	if eo.togglePin {
		return a.notes.TogglePin()
	}
	return nil
}
