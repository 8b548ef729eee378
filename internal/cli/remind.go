package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/reminder"
	"taskdeck/internal/remote"
)

func newRemindCmd(app *App) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Deliver due reminders on a schedule (stdout, log, Telegram when configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := openBackend(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			if once {
				scanner, err := newScanner(app, b, cmd.OutOrStdout())
				if err != nil {
					return writeErr(cmd, err)
				}
				n, err := scanner.Scan(ctx)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"sent": n})
			}

			sched, err := startReminderLoop(app, b, cmd.OutOrStdout())
			if err != nil {
				return writeErr(cmd, err)
			}
			app.Log.Info().Dur("interval", app.Cfg.Reminders.Interval.Std()).Msg("reminder loop started")
			<-ctx.Done()
			sched.Stop()
			app.Log.Info().Msg("reminder loop stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Scan once and exit")
	return cmd
}

func newScanner(app *App, b remote.Backend, out io.Writer) (*reminder.Scanner, error) {
	sinks := reminder.Multi{
		reminder.WriterNotifier{W: out},
		reminder.LogNotifier{Log: app.Log.With().Str("component", "reminder").Logger()},
	}
	if app.Cfg.Telegram.Enabled() {
		tg, err := reminder.NewTelegramNotifier(app.Cfg.Telegram.Token, app.Cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, tg)
	}
	return reminder.NewScanner(b, sinks, app.Log, nil), nil
}

// startReminderLoop scans right away and then on the configured interval.
func startReminderLoop(app *App, b remote.Backend, out io.Writer) (*reminder.Scheduler, error) {
	scanner, err := newScanner(app, b, out)
	if err != nil {
		return nil, err
	}
	scan := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := scanner.Scan(ctx)
		if err != nil {
			app.Log.Warn().Err(err).Msg("reminder scan failed")
			return
		}
		if n > 0 {
			app.Log.Info().Int("sent", n).Msg("reminders delivered")
		}
	}

	sched := reminder.NewScheduler(time.Local)
	if _, err := sched.Every(app.Cfg.Reminders.Interval.Std(), scan); err != nil {
		return nil, err
	}
	scan()
	sched.Start()
	return sched, nil
}
