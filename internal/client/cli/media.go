package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/filex"
)

func newMediaCommand(opts *rootOptions) *cobra.Command {
	var (
		archived bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "media <note-id> <media-id>",
		Short: "Write one attachment of a note to a file or stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *App) error {
				data, err := a.readMedia(ctx, args[0], args[1], archived)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = a.out.Write(data)
					return err
				}
				return filex.WriteFile(output, data)
			})
		},
	}

	cmd.Flags().BoolVarP(&archived, "archived", "a", false, "look in archived notes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file; stdout when empty or -")
	return cmd
}

// readMedia reads an attachment through the handle its note was hydrated
// with.
func (a *App) readMedia(ctx context.Context, noteID, mediaID string, archived bool) ([]byte, error) {
	n, err := a.notes.Note(noteID, archived)
	if err != nil {
		return nil, err
	}

	var found *models.HydratedMedia
	for _, m := range n.Media() {
		if m.Ref.BlobID() == mediaID {
			found = &m
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("note %s has no media %q", noteID, mediaID)
	}

	rc, err := a.notes.Handles().Open(ctx, found.Handle)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
