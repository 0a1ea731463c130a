package main

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	cells := map[string]string{
		"A1": "Expense Report",
		"A3": "Employee",
		"A4": "Amount",
	}
	for addr, v := range cells {
		if err := f.SetCellValue("Sheet1", addr, v); err != nil {
			t.Fatalf("set %s: %v", addr, err)
		}
	}

	path := filepath.Join(t.TempDir(), "expense.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), err
}

func TestExtractCommand(t *testing.T) {
	path := buildWorkbook(t)

	out, err := execute(t, "extract", path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	for _, want := range []string{"## Sheet: Sheet1", "| A3 | Employee |", "| A4 | Amount |"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExtractCommandMissingFile(t *testing.T) {
	if _, err := execute(t, "extract", filepath.Join(t.TempDir(), "absent.xlsx")); err == nil {
		t.Error("expected error for missing workbook")
	}
}

func TestHighlightCommand(t *testing.T) {
	path := buildWorkbook(t)
	dir := filepath.Dir(path)

	tests := []struct {
		name   string
		fields string
	}{
		{"structured", `{"fields": [{"cell_address": "B3", "description": "Employee"}, {"cell_address": "B4", "description": "Amount"}], "reason": "labels in column A"}`},
		{"flat", `{"B4": "Amount", "B3": "Employee"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fieldsPath := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(fieldsPath, []byte(tt.fields), 0o644); err != nil {
				t.Fatalf("write fields: %v", err)
			}
			out := filepath.Join(dir, tt.name+"_out.xlsx")

			stdout, err := execute(t, "highlight", path, fieldsPath, "-o", out)
			if err != nil {
				t.Fatalf("highlight: %v", err)
			}
			if strings.TrimSpace(stdout) != out {
				t.Errorf("stdout = %q, want %q", stdout, out)
			}

			f, err := excelize.OpenFile(out)
			if err != nil {
				t.Fatalf("open output: %v", err)
			}
			defer f.Close()

			for _, addr := range []string{"B3", "B4"} {
				v, err := f.GetCellValue("Sheet1", addr)
				if err != nil {
					t.Fatalf("get %s: %v", addr, err)
				}
				if v != addr {
					t.Errorf("%s = %q, want %q", addr, v, addr)
				}
			}
		})
	}
}

func TestHighlightCommandDefaultOutput(t *testing.T) {
	path := buildWorkbook(t)
	fieldsPath := filepath.Join(filepath.Dir(path), "fields.json")
	if err := os.WriteFile(fieldsPath, []byte(`{"B3": "Employee"}`), 0o644); err != nil {
		t.Fatalf("write fields: %v", err)
	}

	if _, err := execute(t, "highlight", path, fieldsPath); err != nil {
		t.Fatalf("highlight: %v", err)
	}

	want := filepath.Join(filepath.Dir(path), "expense_highlighted.xlsx")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("default output %s not written: %v", want, err)
	}
}

func TestReadAddresses(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{"structured keeps order", `{"fields": [{"cell_address": "D9", "description": "x"}, {"cell_address": "B2", "description": "y"}]}`, []string{"D9", "B2"}, false},
		{"flat sorted", `{"D9": "x", "B2": "y"}`, []string{"B2", "D9"}, false},
		{"fenced model output", "```json\n{\"C3\": \"Total\"}\n```", []string{"C3"}, false},
		{"empty object", `{}`, nil, true},
		{"not json", `B2, C3`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}

			got, err := readAddresses(path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("readAddresses: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("addresses = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectCommandRejectsBadConfig(t *testing.T) {
	path := buildWorkbook(t)
	cfgPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(cfgPath, []byte("[workflow]\nmax_iterations = -2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := execute(t, "detect", path, "--config", cfgPath); err == nil {
		t.Error("expected config validation error")
	}
}
