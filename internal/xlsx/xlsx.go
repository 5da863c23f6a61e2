// Package xlsx converts between cf0 workbooks and .xlsx files. Export
// writes raw cell values, so formulas survive a round trip as formulas
// and Excel re-evaluates them on open.
package xlsx

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"cf0/internal/engine"
	"cf0/internal/model"
)

// Export writes the workbook to path as an .xlsx file, one worksheet
// per sheet in order. Formula cells are written via SetCellFormula so
// spreadsheet applications treat them as live formulas.
func Export(wb model.Workbook, sheets map[string]model.Sheet, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheetID := range wb.SheetOrder {
		sheet, ok := sheets[sheetID]
		if !ok {
			continue
		}
		if i == 0 {
			// excelize starts with a default "Sheet1".
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("add sheet %q: %w", sheet.Name, err)
			}
		}

		for _, cellID := range sortedCellIDs(sheet) {
			raw := sheet.Cells[cellID].Value
			if raw == "" {
				continue
			}
			var err error
			if engine.IsFormula(raw) {
				err = f.SetCellFormula(sheet.Name, cellID, raw[1:])
			} else {
				err = f.SetCellValue(sheet.Name, cellID, raw)
			}
			if err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet.Name, cellID, err)
			}
		}
	}

	return f.SaveAs(path)
}

// Import reads an .xlsx file into sheets keyed by a synthetic id equal
// to the sheet name. Formula cells come back with a leading "=". The
// caller assigns real ids before persisting.
func Import(path string) ([]model.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var out []model.Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		maxCols := 1
		for _, row := range rows {
			if len(row) > maxCols {
				maxCols = len(row)
			}
		}
		maxRows := len(rows)
		if maxRows < 1 {
			maxRows = 1
		}

		sheet := model.NewSheet(name, name, maxCols, maxRows)
		for r, row := range rows {
			for c, val := range row {
				if val == "" {
					continue
				}
				cellID := engine.BuildCellID(model.ColumnLabel(c+1), r+1)
				if formula, err := f.GetCellFormula(name, cellID); err == nil && formula != "" {
					val = "=" + formula
				}
				sheet.Cells[cellID] = model.CellData{Value: val}
			}
		}
		out = append(out, sheet)
	}
	return out, nil
}

func sortedCellIDs(sheet model.Sheet) []string {
	ids := make([]string, 0, len(sheet.Cells))
	for id := range sheet.Cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
