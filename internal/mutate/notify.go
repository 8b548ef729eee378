package mutate

import "github.com/rs/zerolog"

// Notifier is told the outcome of every mutation in human-readable form.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to a logger; the CLI uses it when no UI is attached.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Success(msg string) { n.Log.Info().Msg(msg) }
func (n LogNotifier) Error(msg string)   { n.Log.Error().Msg(msg) }

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
