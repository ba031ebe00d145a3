package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  list | ls [archived]     list notes, pinned first
  search <text>            filter by content (no text clears)
  filter <tag>             filter by tag (no tag clears)
  show <id> [archived]     show one note
  new                      open a draft for a new note
  edit <id> [archived]     open a draft for an existing note
  content                  replace the draft content (ends on an empty line)
  tag <tag> | untag <tag>  add or remove a draft tag
  attach <path>            attach a media file to the draft
  detach <media-id>        detach media from the draft
  rename <audio-id> <name> rename an audio item
  pin                      toggle the draft pin
  draft                    show the open draft
  save | cancel            close the draft
  archive | restore | delete <id>
  gc                       delete unreferenced blobs
  exit | quit`

func newShellCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Work on notes interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, a *App) error {
				sh := &shell{app: a, in: bufio.NewReader(cmd.InOrStdin()), out: a.out}
				return sh.run(ctx)
			})
		},
	}
}

// shell is a read-eval-print loop over one open App. Command errors are
// reported and the loop goes on; it ends on EOF, exit or quit.
type shell struct {
	app *App
	in  *bufio.Reader
	out io.Writer
}

var errQuit = errors.New("quit")

func (sh *shell) prompt() string {
	d := sh.app.notes.Draft()
	if d == nil {
		return "clipnote> "
	}
	return fmt.Sprintf("clipnote (%s)> ", d.ID())
}

func (sh *shell) run(ctx context.Context) error {
	fmt.Fprintln(sh.out, "ClipNote shell (type 'help' for commands)")
	for {
		fmt.Fprint(sh.out, sh.prompt())
		line, err := sh.in.ReadString('\n')
		if fields := strings.Fields(line); len(fields) > 0 {
			if execErr := sh.exec(ctx, fields[0], fields[1:]); execErr != nil {
				if errors.Is(execErr, errQuit) {
					fmt.Fprintln(sh.out, "Bye!")
					return nil
				}
				fmt.Fprintf(sh.out, "error: %v\n", execErr)
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(sh.out)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (sh *shell) exec(ctx context.Context, cmd string, args []string) error {
	ns := sh.app.notes
	archived := slices.Contains(args, "archived")

	switch cmd {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
		return nil

	case "exit", "quit":
		return errQuit

	case "list", "ls", "l":
		if archived {
			return writeNotes(sh.out, formatText, ns.ListArchived())
		}
		pinned, others := ns.Partition()
		return writeNotes(sh.out, formatText, slices.Concat(pinned, others))

	case "search":
		ns.SetSearchTerm(strings.Join(args, " "))
		return nil

	case "filter":
		ns.SetTagFilter(strings.Join(args, " "))
		return nil

	case "show":
		id, err := arg(args, 0, "show <id>")
		if err != nil {
			return err
		}
		n, err := ns.Note(id, archived)
		if err != nil {
			return err
		}
		return writeNote(sh.out, formatText, n)

	case "new":
		id, err := ns.OpenForCreate()
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "new draft %s\n", id)
		return nil

	case "edit":
		id, err := arg(args, 0, "edit <id>")
		if err != nil {
			return err
		}
		_, err = ns.OpenForEdit(ctx, id, archived)
		return err

	case "content":
		text, err := GetMultiline(sh.in, "Enter note text:", sh.out)
		if err != nil {
			return err
		}
		return ns.SetContent(text)

	case "tag":
		return ns.AddTag(strings.Join(args, " "))

	case "untag":
		return ns.RemoveTag(strings.Join(args, " "))

	case "attach":
		path, err := arg(args, 0, "attach <path>")
		if err != nil {
			return err
		}
		ref, err := sh.app.attach(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "attached %s %s\n", ref.Kind(), ref.BlobID())
		return nil

	case "detach":
		id, err := arg(args, 0, "detach <media-id>")
		if err != nil {
			return err
		}
		return ns.RemoveMedia(ctx, id)

	case "rename":
		id, err := arg(args, 0, "rename <audio-id> <name>")
		if err != nil {
			return err
		}
		return ns.RenameAudio(id, strings.Join(args[1:], " "))

	case "pin":
		return ns.TogglePin()

	case "draft":
		d := ns.Draft()
		if d == nil {
			fmt.Fprintln(sh.out, "no draft")
			return nil
		}
		return writeNote(sh.out, formatText, d.Note)

	case "save":
		rec, err := ns.Save(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "saved %s\n", rec.ID)
		return nil

	case "cancel":
		ns.Cancel()
		return nil

	case "archive", "restore", "delete":
		id, err := arg(args, 0, cmd+" <id>")
		if err != nil {
			return err
		}
		switch cmd {
		case "archive":
			return ns.Archive(ctx, id)
		case "restore":
			return ns.Restore(ctx, id)
		default:
			return ns.PermanentlyDelete(ctx, id)
		}

	case "gc":
		report, err := ns.SweepOrphans(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "removed %d blobs\n", report.DeletedCount())
		return nil
	}

	return fmt.Errorf("unknown command %q", cmd)
}

func arg(args []string, i int, usage string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[i], nil
}
