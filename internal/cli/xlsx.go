package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cf0/internal/model"
	"cf0/internal/xlsx"
)

func newExportCmd(app *App) *cobra.Command {
	var workbookID string

	cmd := &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export a workbook to an .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workbookID == "" {
				return writeErr(cmd, fmt.Errorf("--workbook is required"))
			}
			s, err := loadStore(app)
			if err != nil {
				return err
			}
			wb, sheets, err := s.OpenWorkbook(cmd.Context(), workbookID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := xlsx.Export(wb, sheets, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"workbook": wb.ID, "file": args[0]})
		},
	}

	cmd.Flags().StringVar(&workbookID, "workbook", "", "Workbook id to export")

	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Create a new workbook from an .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore(app)
			if err != nil {
				return err
			}

			imported, err := xlsx.Import(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(imported) == 0 {
				return writeErr(cmd, fmt.Errorf("%s contains no sheets", args[0]))
			}

			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}
			wb, err := s.CreateWorkbook(cmd.Context(), name)
			if err != nil {
				return writeErr(cmd, err)
			}

			// Replace the default sheet with the imported ones.
			wb.SheetOrder = wb.SheetOrder[:0]
			sheets := map[string]model.Sheet{}
			for _, sh := range imported {
				sh.ID = uuid.NewString()
				sheets[sh.ID] = sh
				wb.SheetOrder = append(wb.SheetOrder, sh.ID)
			}
			if err := s.SaveWorkbook(cmd.Context(), wb, sheets); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, wb)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Workbook name (default: file name)")

	return cmd
}
