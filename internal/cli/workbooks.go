package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWorkbooksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workbooks",
		Aliases: []string{"wb"},
		Short:   "Manage workbooks",
	}
	cmd.AddCommand(newWorkbooksListCmd(app))
	cmd.AddCommand(newWorkbooksCreateCmd(app))
	cmd.AddCommand(newWorkbooksRenameCmd(app))
	cmd.AddCommand(newWorkbooksDeleteCmd(app))
	return cmd
}

func newWorkbooksListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workbooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore(app)
			if err != nil {
				return err
			}
			wbs, err := s.ListWorkbooks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"workbooks": wbs})
		},
	}
}

func newWorkbooksCreateCmd(app *App) *cobra.Command {
	var use bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore(app)
			if err != nil {
				return err
			}
			wb, err := s.CreateWorkbook(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				cfg, err := s.LoadConfig()
				if err != nil {
					return writeErr(cmd, err)
				}
				cfg.CurrentWorkbookID = wb.ID
				if err := s.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, wb)
		},
	}

	cmd.Flags().BoolVar(&use, "use", false, "Make the new workbook the current one")

	return cmd
}

func newWorkbooksRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <workbook-id> <name>",
		Short: "Rename a workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore(app)
			if err != nil {
				return err
			}
			if err := s.RenameWorkbook(cmd.Context(), args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "name": args[1]})
		},
	}
}

func newWorkbooksDeleteCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <workbook-id>",
		Short: "Delete a workbook and all its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return writeErr(cmd, fmt.Errorf("refusing to delete %s without --force", args[0]))
			}
			s, err := loadStore(app)
			if err != nil {
				return err
			}
			if err := s.DeleteWorkbook(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			// Drop a now-dangling current-workbook pointer.
			if cfg, err := s.LoadConfig(); err == nil && cfg.CurrentWorkbookID == args[0] {
				cfg.CurrentWorkbookID = ""
				_ = s.SaveConfig(cfg)
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "deleted": true})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Actually delete (irreversible)")

	return cmd
}
