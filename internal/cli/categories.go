package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/format"
	"taskdeck/internal/model"
)

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Category commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			return writeOut(cmd, app, format.Categories(s.ctrl.Categories()))
		},
	})
	cmd.AddCommand(newCategoriesCreateCmd(app))
	cmd.AddCommand(newCategoriesUpdateCmd(app))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category (tasks keep their category id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			id := strings.TrimSpace(args[0])
			if !s.ctrl.DeleteCategory(cmd.Context(), id) {
				return writeErr(cmd, s.notes.err("Failed to delete category"))
			}
			return writeOut(cmd, app, map[string]any{"id": id, "deleted": true})
		},
	})

	return cmd
}

func newCategoriesCreateCmd(app *App) *cobra.Command {
	var in model.CategoryInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			c := s.ctrl.CreateCategory(cmd.Context(), in)
			if c == nil {
				return writeErr(cmd, s.notes.err("Failed to create category"))
			}
			return writeOut(cmd, app, *c)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Name (1-50 chars)")
	cmd.Flags().StringVar(&in.Color, "color", "#0891b2", "Color (#RRGGBB)")
	cmd.Flags().StringVar(&in.Icon, "icon", "tag", "Icon name")
	return cmd
}

func newCategoriesUpdateCmd(app *App) *cobra.Command {
	var name, color, icon string

	cmd := &cobra.Command{
		Use:   "update <category-id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p model.CategoryPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("color") {
				p.Color = &color
			}
			if cmd.Flags().Changed("icon") {
				p.Icon = &icon
			}

			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			c := s.ctrl.UpdateCategory(cmd.Context(), strings.TrimSpace(args[0]), p)
			if c == nil {
				return writeErr(cmd, s.notes.err("Failed to update category"))
			}
			return writeOut(cmd, app, *c)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name (1-50 chars)")
	cmd.Flags().StringVar(&color, "color", "", "Color (#RRGGBB)")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon name")
	return cmd
}
