package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRunJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("cf0 %v failed: %v", args, err)
	}
	var env map[string]any
	if err := json.Unmarshal([]byte(stdout), &env); err != nil {
		t.Fatalf("stdout is not a JSON envelope: %v\nstdout:\n%s", err, stdout)
	}
	data, ok := env["data"]
	if !ok {
		t.Fatalf("envelope missing data key: %s", stdout)
	}
	m, _ := data.(map[string]any)
	return m
}

func TestWorkbooksLifecycle(t *testing.T) {
	dir := t.TempDir()

	created := mustRunJSON(t, "--dir", dir, "workbooks", "create", "budget")
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("create returned no id: %#v", created)
	}

	listed := mustRunJSON(t, "--dir", dir, "workbooks", "list")
	wbs, _ := listed["workbooks"].([]any)
	if len(wbs) != 1 {
		t.Fatalf("expected one workbook, got %#v", listed)
	}

	mustRunJSON(t, "--dir", dir, "workbooks", "rename", id, "budget-2026")

	if _, err := runCLI(t, "--dir", dir, "workbooks", "delete", id); err == nil {
		t.Fatal("delete without --force must fail")
	}
	mustRunJSON(t, "--dir", dir, "workbooks", "delete", id, "--force")

	listed = mustRunJSON(t, "--dir", dir, "workbooks", "list")
	if wbs, _ := listed["workbooks"].([]any); len(wbs) != 0 {
		t.Fatalf("expected empty list after delete, got %#v", listed)
	}
}

func TestEvalStandalone(t *testing.T) {
	dir := t.TempDir()

	res := mustRunJSON(t, "--dir", dir, "eval", "=1+2*3")
	if got := res["result"]; got != "7" {
		t.Fatalf("result = %v, want 7", got)
	}

	// Without a workbook every reference is unresolvable.
	res = mustRunJSON(t, "--dir", dir, "eval", "=A1+1")
	if got := res["result"]; got != "#REF!" {
		t.Fatalf("result = %v, want #REF!", got)
	}
}

func TestExportImportRoundTripViaCLI(t *testing.T) {
	dir := t.TempDir()

	created := mustRunJSON(t, "--dir", dir, "workbooks", "create", "src")
	id, _ := created["id"].(string)

	file := filepath.Join(t.TempDir(), "src.xlsx")
	mustRunJSON(t, "--dir", dir, "export", "--workbook", id, file)

	imported := mustRunJSON(t, "--dir", dir, "import", file, "--name", "copy")
	if name, _ := imported["name"].(string); name != "copy" {
		t.Fatalf("imported workbook name = %v", imported["name"])
	}
}

func TestDocsListsAndRendersTopics(t *testing.T) {
	dir := t.TempDir()

	res := mustRunJSON(t, "--dir", dir, "docs")
	topics, _ := res["topics"].([]any)
	if len(topics) == 0 {
		t.Fatal("expected at least one docs topic")
	}

	stdout, err := runCLI(t, "--dir", dir, "docs", "formulas", "--raw")
	if err != nil {
		t.Fatalf("docs formulas: %v", err)
	}
	if stdout == "" {
		t.Fatal("expected raw markdown output")
	}

	if _, err := runCLI(t, "--dir", dir, "docs", "no-such-topic"); err == nil {
		t.Fatal("unknown topic must fail")
	}
}
