package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/docs"
)

type docTopic struct {
	Topic    string `json:"topic"`
	Markdown string `json:"markdown"`
}

func (d docTopic) Text() string { return strings.TrimRight(d.Markdown, "\n") }

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"topics": docs.Topics()})
			}

			topic := strings.ToLower(strings.TrimSpace(args[0]))
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `taskdeck docs` to list topics)", args[0]))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, docTopic{Topic: topic, Markdown: body})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
	return cmd
}
