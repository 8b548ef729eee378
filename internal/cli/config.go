package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskdeck/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration (file + env + flags)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *app.Cfg
			if cfg.Telegram.Token != "" {
				cfg.Telegram.Token = "***"
			}
			path := app.ConfigPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return writeErr(cmd, err)
				}
				path = p
			}
			return writeOutMeta(cmd, app, cfg, map[string]any{"path": path})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "Describe the TASKDECK_* environment variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := config.Usage()
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), u)
			return err
		},
	})
	return cmd
}
