package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cf0/internal/engine"
	"cf0/internal/model"
)

func newEvalCmd(app *App) *cobra.Command {
	var workbookID string
	var sheetName string

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate a formula and print the result",
		Long: `Evaluate a formula the way a cell would display it.

With --workbook, cell references resolve against that workbook's
sheets. Without it, every reference is #REF!.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := args[0]

			lookup := engine.Lookup(func(sheet, cell string) (string, bool) { return "", false })
			current := "Sheet1"

			if workbookID != "" {
				s, err := loadStore(app)
				if err != nil {
					return err
				}
				wb, sheets, err := s.OpenWorkbook(cmd.Context(), workbookID)
				if err != nil {
					return writeErr(cmd, err)
				}
				byName := make(map[string]model.Sheet, len(sheets))
				for _, sh := range sheets {
					byName[sh.Name] = sh
				}
				current = sheetName
				if current == "" {
					if len(wb.SheetOrder) == 0 {
						return writeErr(cmd, fmt.Errorf("workbook %s has no sheets", workbookID))
					}
					current = sheets[wb.SheetOrder[0]].Name
				}
				if _, ok := byName[current]; !ok {
					return writeErr(cmd, fmt.Errorf("no sheet named %q in workbook %s", current, workbookID))
				}
				lookup = func(sheet, cell string) (string, bool) {
					sh, ok := byName[sheet]
					if !ok {
						return "", false
					}
					return sh.Cells[cell].Value, true
				}
			}

			result := engine.Evaluate(expr, current, lookup)
			return writeOut(cmd, app, map[string]any{"input": expr, "result": result})
		},
	}

	cmd.Flags().StringVar(&workbookID, "workbook", "", "Workbook id to resolve references against")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet name for unqualified references (default: first sheet)")

	return cmd
}
