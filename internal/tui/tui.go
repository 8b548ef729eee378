// Package tui is the interactive task board.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"taskdeck/internal/mutate"
)

type Options struct {
	Controller *mutate.Controller
	// Notes carries the controller's notifications. It must be the notifier
	// the controller was built with; nil disables the status line.
	Notes  *Notifier
	Logger zerolog.Logger
	// Resync is how often the full task list is refetched. Zero disables it.
	Resync time.Duration
	Title  string
}

func Run(ctx context.Context, opts Options) error {
	if opts.Controller == nil {
		return errors.New("tui: controller is required")
	}
	applyColorProfilePreference()
	applyThemePreference()

	m := newModel(ctx, opts)
	defer m.unsubscribe()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
