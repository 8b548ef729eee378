package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"taskdeck/internal/canonical"
	"taskdeck/internal/config"
	"taskdeck/internal/model"
	"taskdeck/internal/mutate"
	"taskdeck/internal/remote"
	"taskdeck/internal/repository"
	"taskdeck/internal/store"
	"taskdeck/internal/tui"
)

func defaultDataDir() (string, error) {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return store.DefaultDir(filepath.Join(cfgDir, "data"))
}

// openBackend builds the configured backend, wrapped in remote.Flaky when
// simulation is on.
func openBackend(ctx context.Context, app *App) (remote.Backend, error) {
	if app.OpenBackend != nil {
		return app.OpenBackend(ctx, app)
	}
	cfg := app.Cfg
	var (
		b   remote.Backend
		err error
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		b, err = store.Open(ctx, cfg.Dir, store.Options{Logger: app.Log.With().Str("backend", "sqlite").Logger()})
	case config.BackendGorm:
		dsn := cfg.GormDSN
		if dsn == "" {
			dsn = filepath.Join(cfg.Dir, "taskdeck-gorm.sqlite")
		}
		b, err = repository.Open(ctx, dsn, app.Log.With().Str("backend", "gorm").Logger())
	case config.BackendHTTP:
		b = remote.NewHTTPClient(cfg.RemoteURL, 0)
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Simulate.Enabled() {
		app.Log.Debug().
			Dur("latency", cfg.Simulate.Latency.Std()).
			Float64("failureRate", cfg.Simulate.FailureRate).
			Msg("simulating an unreliable service")
		b = remote.NewFlaky(b, cfg.Simulate.Latency.Std(), cfg.Simulate.FailureRate, cfg.Simulate.Seed)
	}
	return b, nil
}

// session is one command's view of the world: a backend and a loaded controller.
type session struct {
	backend remote.Backend
	ctrl    *mutate.Controller
	notes   *notes
	uiNotes *tui.Notifier
}

func openSession(ctx context.Context, app *App, interactive bool) (*session, error) {
	b, err := openBackend(ctx, app)
	if err != nil {
		return nil, err
	}
	s := &session{backend: b, notes: &notes{}}
	var n mutate.Notifier = s.notes
	if interactive {
		s.uiNotes = tui.NewNotifier(64)
		n = s.uiNotes
	}
	s.ctrl = mutate.New(canonical.New(nil), b, mutate.Options{
		Notifier: n,
		Logger:   app.Log.With().Str("component", "controller").Logger(),
	})
	if err := s.ctrl.Load(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error {
	return s.backend.Close()
}

func (s *session) task(id string) (model.Task, error) {
	id = strings.TrimSpace(id)
	t, ok := s.ctrl.Store().Get(id)
	if !ok {
		return model.Task{}, remote.NotFound("task", id)
	}
	return t, nil
}

// notes records controller notifications so a failed single-entity operation
// can be reported as the command's error.
type notes struct {
	mu      sync.Mutex
	success []string
	errs    []string
}

func (n *notes) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.success = append(n.success, msg)
}

func (n *notes) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, msg)
}

// err returns the last error notification, or fallback when there was none.
func (n *notes) err(fallback string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errs) == 0 {
		return errors.New(fallback)
	}
	return errors.New(n.errs[len(n.errs)-1])
}

func (n *notes) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.success) == 0 {
		return ""
	}
	return n.success[len(n.success)-1]
}
