package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"cf0/internal/model"
)

const (
	defaultSheetCols = 26
	defaultSheetRows = 100
)

// openWorkbookDB opens (creating if needed) a workbook's SQLite db and
// applies migrations.
func (s Store) openWorkbookDB(ctx context.Context, id string) (*sql.DB, error) {
	if err := os.MkdirAll(s.workbookDir(id), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.workbookDBPath(id))
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when a CLI command runs while the
	// TUI is open.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateWorkbookDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateWorkbookDB(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sheets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			columns_json TEXT NOT NULL,
			rows_json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cells (
			sheet_id TEXT NOT NULL,
			cell_id TEXT NOT NULL,
			value TEXT NOT NULL,
			style_json TEXT NOT NULL DEFAULT '',
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY (sheet_id, cell_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cells_sheet ON cells(sheet_id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func writeMeta(ctx context.Context, tx *sql.Tx, k, v string) error {
	_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, k, v)
	return err
}

func readMeta(ctx context.Context, db *sql.DB, k string) string {
	var v string
	_ = db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, k).Scan(&v)
	return strings.TrimSpace(v)
}

// CreateWorkbook initializes a new workbook with a single default
// sheet.
func (s Store) CreateWorkbook(ctx context.Context, name string) (model.Workbook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Workbook{}, fmt.Errorf("workbook name must not be empty")
	}
	if err := s.Ensure(); err != nil {
		return model.Workbook{}, err
	}

	now := time.Now().UTC()
	wb := model.Workbook{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sheet := model.NewSheet(uuid.NewString(), "Sheet1", defaultSheetCols, defaultSheetRows)
	wb.SheetOrder = []string{sheet.ID}

	if err := s.SaveWorkbook(ctx, wb, map[string]model.Sheet{sheet.ID: sheet}); err != nil {
		return model.Workbook{}, err
	}
	return wb, nil
}

// SaveWorkbook writes the full workbook state. Cell updates during
// editing go through UpdateCell instead; this replace-all path serves
// create, import, and structural changes.
func (s Store) SaveWorkbook(ctx context.Context, wb model.Workbook, sheets map[string]model.Sheet) error {
	db, err := s.openWorkbookDB(ctx, wb.ID)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order, _ := json.Marshal(wb.SheetOrder)
	metaKV := map[string]string{
		"id":               wb.ID,
		"name":             wb.Name,
		"sheet_order_json": string(order),
		"created_at":       wb.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":       time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range metaKV {
		if err := writeMeta(ctx, tx, k, v); err != nil {
			return err
		}
	}

	for _, t := range []string{"sheets", "cells"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()
	for _, sheet := range sheets {
		cols, _ := json.Marshal(sheet.Columns)
		rows, _ := json.Marshal(sheet.Rows)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheets(id, name, position, columns_json, rows_json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			sheet.ID, sheet.Name, sheetPosition(wb.SheetOrder, sheet.ID), string(cols), string(rows), nowMs); err != nil {
			return err
		}
		for cellID, cell := range sheet.Cells {
			styleJSON := ""
			if cell.Style != nil {
				b, _ := json.Marshal(cell.Style)
				styleJSON = string(b)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cells(sheet_id, cell_id, value, style_json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
				sheet.ID, cellID, cell.Value, styleJSON, nowMs); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// OpenWorkbook loads a workbook and all its sheets.
func (s Store) OpenWorkbook(ctx context.Context, id string) (model.Workbook, map[string]model.Sheet, error) {
	if _, err := os.Stat(s.workbookDBPath(id)); err != nil {
		return model.Workbook{}, nil, fmt.Errorf("%w: %s", ErrWorkbookNotFound, id)
	}
	db, err := s.openWorkbookDB(ctx, id)
	if err != nil {
		return model.Workbook{}, nil, err
	}
	defer db.Close()

	wb := model.Workbook{ID: id, Name: readMeta(ctx, db, "name")}
	if v := readMeta(ctx, db, "sheet_order_json"); v != "" {
		_ = json.Unmarshal([]byte(v), &wb.SheetOrder)
	}
	if t, err := time.Parse(time.RFC3339Nano, readMeta(ctx, db, "created_at")); err == nil {
		wb.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, readMeta(ctx, db, "updated_at")); err == nil {
		wb.UpdatedAt = t
	}

	sheets := map[string]model.Sheet{}
	rows, err := db.QueryContext(ctx, `SELECT id, name, columns_json, rows_json FROM sheets ORDER BY position`)
	if err != nil {
		return model.Workbook{}, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sheet model.Sheet
		var colsJSON, rowsJSON string
		if err := rows.Scan(&sheet.ID, &sheet.Name, &colsJSON, &rowsJSON); err != nil {
			return model.Workbook{}, nil, err
		}
		_ = json.Unmarshal([]byte(colsJSON), &sheet.Columns)
		_ = json.Unmarshal([]byte(rowsJSON), &sheet.Rows)
		sheet.Cells = map[string]model.CellData{}
		sheets[sheet.ID] = sheet
	}
	if err := rows.Err(); err != nil {
		return model.Workbook{}, nil, err
	}

	cellRows, err := db.QueryContext(ctx, `SELECT sheet_id, cell_id, value, style_json FROM cells`)
	if err != nil {
		return model.Workbook{}, nil, err
	}
	defer cellRows.Close()
	for cellRows.Next() {
		var sheetID, cellID, val, styleJSON string
		if err := cellRows.Scan(&sheetID, &cellID, &val, &styleJSON); err != nil {
			return model.Workbook{}, nil, err
		}
		sheet, ok := sheets[sheetID]
		if !ok {
			continue
		}
		cell := model.CellData{Value: val}
		if strings.TrimSpace(styleJSON) != "" {
			var style model.CellStyle
			if err := json.Unmarshal([]byte(styleJSON), &style); err == nil {
				cell.Style = &style
			}
		}
		sheet.Cells[cellID] = cell
	}
	if err := cellRows.Err(); err != nil {
		return model.Workbook{}, nil, err
	}

	// Heal a missing or stale sheet order.
	if len(wb.SheetOrder) == 0 {
		for id := range sheets {
			wb.SheetOrder = append(wb.SheetOrder, id)
		}
		sort.Strings(wb.SheetOrder)
	}

	return wb, sheets, nil
}

// ListWorkbooks enumerates workbook metadata, sorted by name.
func (s Store) ListWorkbooks(ctx context.Context) ([]model.Workbook, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.workbooksDir())
	if err != nil {
		return nil, err
	}
	var out []model.Workbook
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(s.workbookDBPath(e.Name())); err != nil {
			continue
		}
		wb, _, err := s.OpenWorkbook(ctx, e.Name())
		if err != nil {
			continue
		}
		out = append(out, wb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RenameWorkbook updates the workbook display name.
func (s Store) RenameWorkbook(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("workbook name must not be empty")
	}
	if _, err := os.Stat(s.workbookDBPath(id)); err != nil {
		return fmt.Errorf("%w: %s", ErrWorkbookNotFound, id)
	}
	db, err := s.openWorkbookDB(ctx, id)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := writeMeta(ctx, tx, "name", name); err != nil {
		return err
	}
	if err := writeMeta(ctx, tx, "updated_at", time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteWorkbook removes a workbook directory entirely.
func (s Store) DeleteWorkbook(id string) error {
	if _, err := os.Stat(s.workbookDBPath(id)); err != nil {
		return fmt.Errorf("%w: %s", ErrWorkbookNotFound, id)
	}
	return os.RemoveAll(s.workbookDir(id))
}

// UpdateCell is the persistence collaborator invoked on every cell
// commit. An empty value deletes the row. The caller has already
// applied the value locally; failures here are reported, not retried.
func (s Store) UpdateCell(ctx context.Context, workbookID, sheetID, cellID, value string) error {
	db, err := s.openWorkbookDB(ctx, workbookID)
	if err != nil {
		return err
	}
	defer db.Close()

	if value == "" {
		_, err = db.ExecContext(ctx, `DELETE FROM cells WHERE sheet_id = ? AND cell_id = ?`, sheetID, cellID)
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO cells(sheet_id, cell_id, value, style_json, updated_at_unixms)
		 VALUES(?, ?, ?, '', ?)
		 ON CONFLICT(sheet_id, cell_id) DO UPDATE SET value = excluded.value, updated_at_unixms = excluded.updated_at_unixms`,
		sheetID, cellID, value, time.Now().UTC().UnixMilli())
	return err
}

func sheetPosition(order []string, id string) int {
	for i, x := range order {
		if x == id {
			return i
		}
	}
	return len(order)
}
