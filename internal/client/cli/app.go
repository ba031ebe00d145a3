package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/clipnote/internal/client/config"
	"github.com/dmitrijs2005/clipnote/internal/client/events"
	"github.com/dmitrijs2005/clipnote/internal/client/services"
	"github.com/dmitrijs2005/clipnote/internal/client/storage"
	"github.com/dmitrijs2005/clipnote/internal/logging"
)

// App bundles the opened store with the note service driving it.
type App struct {
	config *config.Config
	log    logging.Logger
	repos  *storage.Repositories
	events events.Publisher
	notes  *services.NoteService
	out    io.Writer
}

// NewApp opens storage and the event topic, then loads every note.
// Diagnostics go to logOut; command output goes to out.
func NewApp(ctx context.Context, cfg *config.Config, out, logOut io.Writer) (*App, error) {
	log, err := logging.New(cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	repos, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	pub, err := events.Open(ctx, cfg.EventsURL)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	ns := services.NewNoteService(repos.Notes, repos.Blobs, log,
		services.WithEvents(pub),
		services.WithHydrationWorkers(cfg.HydrationWorkers),
	)

	a := &App{config: cfg, log: log, repos: repos, events: pub, notes: ns, out: out}
	if err := ns.Load(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return a, nil
}

// Close discards any open draft, releases every handle and closes storage.
func (a *App) Close(ctx context.Context) error {
	a.notes.Cancel()
	a.notes.Close()
	if live := a.notes.Handles().Live(); live > 0 {
		a.log.Warn(ctx, "handles still live at shutdown", "count", live)
	}
	return errors.Join(a.events.Shutdown(ctx), a.repos.Close())
}

// withDraft runs fn on the open draft and saves it. Any failure cancels the
// draft so that nothing staged survives the command.
func (a *App) withDraft(ctx context.Context, fn func() error) error {
	if err := fn(); err != nil {
		a.notes.Cancel()
		return err
	}
	rec, err := a.notes.Save(ctx)
	if err != nil {
		a.notes.Cancel()
		return err
	}
	fmt.Fprintln(a.out, rec.ID)
	return nil
}
