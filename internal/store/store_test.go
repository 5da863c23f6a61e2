package store

import (
	"context"
	"errors"
	"testing"

	"cf0/internal/model"
)

func testStore(t *testing.T) Store {
	t.Helper()
	return Store{Dir: t.TempDir()}
}

func TestCreateAndOpenWorkbook(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	wb, err := s.CreateWorkbook(ctx, "budget")
	if err != nil {
		t.Fatalf("CreateWorkbook: %v", err)
	}
	if wb.ID == "" || wb.Name != "budget" {
		t.Fatalf("unexpected workbook: %+v", wb)
	}
	if len(wb.SheetOrder) != 1 {
		t.Fatalf("new workbook should have one sheet, got %v", wb.SheetOrder)
	}

	got, sheets, err := s.OpenWorkbook(ctx, wb.ID)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	if got.Name != "budget" {
		t.Fatalf("name = %q", got.Name)
	}
	sheet, ok := sheets[wb.SheetOrder[0]]
	if !ok {
		t.Fatalf("default sheet missing, sheets=%v", sheets)
	}
	if sheet.Name != "Sheet1" || len(sheet.Columns) == 0 || len(sheet.Rows) == 0 {
		t.Fatalf("unexpected default sheet: %+v", sheet)
	}
}

func TestUpdateCellRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	wb, err := s.CreateWorkbook(ctx, "cells")
	if err != nil {
		t.Fatalf("CreateWorkbook: %v", err)
	}
	sheetID := wb.SheetOrder[0]

	if err := s.UpdateCell(ctx, wb.ID, sheetID, "B4", "=A1+1"); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	// Overwrite must replace, not duplicate.
	if err := s.UpdateCell(ctx, wb.ID, sheetID, "B4", "42"); err != nil {
		t.Fatalf("UpdateCell overwrite: %v", err)
	}

	_, sheets, err := s.OpenWorkbook(ctx, wb.ID)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	if got := sheets[sheetID].Cells["B4"].Value; got != "42" {
		t.Fatalf("cell value = %q, want %q", got, "42")
	}

	// Empty value deletes the row.
	if err := s.UpdateCell(ctx, wb.ID, sheetID, "B4", ""); err != nil {
		t.Fatalf("UpdateCell delete: %v", err)
	}
	_, sheets, err = s.OpenWorkbook(ctx, wb.ID)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	if _, exists := sheets[sheetID].Cells["B4"]; exists {
		t.Fatal("cleared cell still present after reload")
	}
}

func TestSaveWorkbookPersistsStyles(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	wb, err := s.CreateWorkbook(ctx, "styled")
	if err != nil {
		t.Fatalf("CreateWorkbook: %v", err)
	}
	_, sheets, err := s.OpenWorkbook(ctx, wb.ID)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	sheetID := wb.SheetOrder[0]
	sheet := sheets[sheetID]
	sheet.Cells["A1"] = model.CellData{
		Value: "total",
		Style: &model.CellStyle{Bold: true, Align: "right"},
	}
	sheets[sheetID] = sheet

	if err := s.SaveWorkbook(ctx, wb, sheets); err != nil {
		t.Fatalf("SaveWorkbook: %v", err)
	}
	_, reloaded, err := s.OpenWorkbook(ctx, wb.ID)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	cell := reloaded[sheetID].Cells["A1"]
	if cell.Style == nil || !cell.Style.Bold || cell.Style.Align != "right" {
		t.Fatalf("style lost on reload: %+v", cell.Style)
	}
}

func TestListRenameDeleteWorkbooks(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	a, err := s.CreateWorkbook(ctx, "alpha")
	if err != nil {
		t.Fatalf("CreateWorkbook: %v", err)
	}
	if _, err := s.CreateWorkbook(ctx, "beta"); err != nil {
		t.Fatalf("CreateWorkbook: %v", err)
	}

	wbs, err := s.ListWorkbooks(ctx)
	if err != nil {
		t.Fatalf("ListWorkbooks: %v", err)
	}
	if len(wbs) != 2 || wbs[0].Name != "alpha" || wbs[1].Name != "beta" {
		t.Fatalf("unexpected list: %+v", wbs)
	}

	if err := s.RenameWorkbook(ctx, a.ID, "gamma"); err != nil {
		t.Fatalf("RenameWorkbook: %v", err)
	}
	got, _, err := s.OpenWorkbook(ctx, a.ID)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	if got.Name != "gamma" {
		t.Fatalf("renamed to %q", got.Name)
	}

	if err := s.DeleteWorkbook(a.ID); err != nil {
		t.Fatalf("DeleteWorkbook: %v", err)
	}
	if _, _, err := s.OpenWorkbook(ctx, a.ID); !errors.Is(err, ErrWorkbookNotFound) {
		t.Fatalf("want ErrWorkbookNotFound after delete, got %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := testStore(t)

	cfg, err := s.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig on empty store: %v", err)
	}
	if cfg.CurrentWorkbookID != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}

	cfg.CurrentWorkbookID = "wb-123"
	cfg.Theme = "dark"
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := s.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != cfg {
		t.Fatalf("config round trip: %+v != %+v", got, cfg)
	}
}
