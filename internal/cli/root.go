package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/format"
	"taskdeck/internal/logging"
	"taskdeck/internal/remote"
	"taskdeck/internal/tui"
)

type App struct {
	ConfigPath string
	Dir        string
	Backend    string
	RemoteURL  string
	LogLevel   string
	PrettyJSON bool
	Format     string

	Cfg *config.Config
	Log zerolog.Logger

	closeLog func() error

	// OpenBackend replaces backend construction (tests).
	OpenBackend func(ctx context.Context, app *App) (remote.Backend, error)
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskdeck",
		Short:        "taskdeck: local-first task manager (CLI + TUI + HTTP service)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskdeck

  # Scriptable commands
  taskdeck tasks list --status todo --query milk
  taskdeck tasks bulk-complete task-abc task-def

  # Direct task lookup (shortcut for: taskdeck tasks show <task-id>)
  taskdeck task-abc
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd, cmd.Parent() == nil)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TASKDECK_CONFIG", ""), "Path to config.json (default: ~/.taskdeck/config.json)")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data directory for the sqlite/gorm backends (overrides config)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Backend: sqlite|gorm|http (overrides config)")
	cmd.PersistentFlags().StringVar(&app.RemoteURL, "remote", "", "Base URL of a `taskdeck serve` instance (http backend)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (overrides config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKDECK_FORMAT", format.JSON), "Output format (json|edn|text)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newSubtasksCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newRemindersCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newRemindCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup loads config, overlays flags and builds the logger. The TUI logs to a
// file because it owns the terminal.
func (app *App) setup(cmd *cobra.Command, interactive bool) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	if v := strings.TrimSpace(app.Dir); v != "" {
		cfg.Dir = v
	}
	if v := strings.TrimSpace(app.Backend); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(app.RemoteURL); v != "" {
		cfg.RemoteURL = v
	}
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, err)
	}
	if cfg.Dir == "" {
		d, err := defaultDataDir()
		if err != nil {
			return writeErr(cmd, err)
		}
		cfg.Dir = d
	}

	logCfg := cfg.Log
	var sink io.Writer = cmd.ErrOrStderr()
	if interactive {
		if logCfg.File == "" {
			logCfg.File = filepath.Join(cfg.Dir, "taskdeck.log")
		}
		logCfg.Format = "console"
	}
	log, closer, err := logging.New(logCfg, sink)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.Cfg = cfg
	app.Log = log
	app.closeLog = closer
	return nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, app, true)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()
	return tui.Run(ctx, tui.Options{
		Controller: s.ctrl,
		Notes:      s.uiNotes,
		Logger:     app.Log,
		Resync:     app.Cfg.Reminders.Resync.Std(),
		Title:      fmt.Sprintf("taskdeck · %s", app.Cfg.Backend),
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envelope is the shape of every command's output.
type envelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

func (e envelope) Text() string {
	if t, ok := e.Data.(format.Texter); ok {
		return t.Text()
	}
	b, err := json.MarshalIndent(e.Data, "", "  ")
	if err != nil {
		return fmt.Sprint(e.Data)
	}
	return string(b)
}

func writeOut(cmd *cobra.Command, app *App, data any) error {
	return writeOutMeta(cmd, app, data, nil)
}

func writeOutMeta(cmd *cobra.Command, app *App, data, meta any) error {
	return format.Write(cmd.OutOrStdout(), envelope{Data: data, Meta: meta}, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
