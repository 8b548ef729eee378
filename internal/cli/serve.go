package cli

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var listen string
	var withReminders bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local backend as a JSON/HTTP task service",
		Example: strings.TrimSpace(`
  taskdeck serve --listen 127.0.0.1:8080
  taskdeck --backend http --remote http://127.0.0.1:8080 tasks list
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.Backend == config.BackendHTTP {
				return writeErr(cmd, errors.New("serve needs a local backend (sqlite or gorm)"))
			}
			addr := strings.TrimSpace(listen)
			if addr == "" {
				addr = app.Cfg.Listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := openBackend(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			if withReminders {
				sched, err := startReminderLoop(app, b, cmd.OutOrStdout())
				if err != nil {
					return writeErr(cmd, err)
				}
				defer sched.Stop()
			}

			srv := web.NewServer(web.ServerConfig{
				Addr:            addr,
				ShutdownTimeout: 5 * time.Second,
				Debug:           app.Log.GetLevel() <= zerolog.DebugLevel,
			}, b, app.Log.With().Str("component", "http").Logger())
			if err := srv.ListenAndServe(ctx); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&withReminders, "reminders", false, "Also run the reminder scan loop")
	return cmd
}
