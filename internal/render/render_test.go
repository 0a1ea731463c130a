package render_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/formscout/internal/render"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("png"), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		sheets  []string
		files   []string
		want    []string
		failing []string
	}{
		{
			name:   "falls back to sheet index",
			sheets: []string{"Form"},
			files:  []string{"out_sheet1.png"},
			want:   []string{"out_sheet1.png"},
		},
		{
			name:   "bare name wins for single sheet",
			sheets: []string{"Form"},
			files:  []string{"out_1.png", "out_sheet1.png", "out.png"},
			want:   []string{"out.png"},
		},
		{
			name:   "numbered wins over later patterns",
			sheets: []string{"Form"},
			files:  []string{"out_1.png", "out_sheet1.png"},
			want:   []string{"out_1.png"},
		},
		{
			name:   "sheet name before dashed index",
			sheets: []string{"Form"},
			files:  []string{"out_Form.png", "out-1.png"},
			want:   []string{"out_Form.png"},
		},
		{
			name:   "bare name for single sheet",
			sheets: []string{"Form"},
			files:  []string{"out.png"},
			want:   []string{"out.png"},
		},
		{
			name:   "zero index for single sheet",
			sheets: []string{"Form"},
			files:  []string{"out_sheet0.png"},
			want:   []string{"out_sheet0.png"},
		},
		{
			name:    "bare name ignored for multiple sheets",
			sheets:  []string{"Front", "Back"},
			files:   []string{"out.png", "out-2.png"},
			want:    []string{"out-2.png"},
			failing: []string{"Front"},
		},
		{
			name:   "each sheet resolves independently",
			sheets: []string{"Front", "Back"},
			files:  []string{"out-1.png", "out_Back.png"},
			want:   []string{"out-1.png", "out_Back.png"},
		},
		{
			name:    "nothing rendered",
			sheets:  []string{"Form"},
			failing: []string{"Form"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f)
			}

			result := render.Probe(dir, "out", tt.sheets, render.Candidates)

			if len(result.Captures) != len(tt.want) {
				t.Fatalf("captures: got %d, want %d (%+v)", len(result.Captures), len(tt.want), result)
			}
			for i, c := range result.Captures {
				if filepath.Base(c.Path) != tt.want[i] {
					t.Errorf("capture %d: got %s, want %s", i, filepath.Base(c.Path), tt.want[i])
				}
			}

			if len(result.Failures) != len(tt.failing) {
				t.Fatalf("failures: got %d, want %d", len(result.Failures), len(tt.failing))
			}
			for i, f := range result.Failures {
				if f.Sheet != tt.failing[i] {
					t.Errorf("failure %d: got %s, want %s", i, f.Sheet, tt.failing[i])
				}
				if len(f.Tried) == 0 {
					t.Errorf("failure %d: no candidates recorded", i)
				}
			}
		})
	}
}

func TestProbeCandidateOrder(t *testing.T) {
	dir := t.TempDir()
	result := render.Probe(dir, "wb", []string{"Form"}, render.Candidates)

	want := []string{
		"wb.png",
		"wb_1.png",
		"wb_Form.png",
		"wb-1.png",
		"wb_sheet1.png",
		"wb_sheet0.png",
	}

	if len(result.Failures) != 1 {
		t.Fatalf("expected one failure, got %+v", result)
	}

	tried := result.Failures[0].Tried
	if len(tried) != len(want) {
		t.Fatalf("tried: got %v, want %v", tried, want)
	}
	for i := range want {
		if tried[i] != want[i] {
			t.Errorf("candidate %d: got %s, want %s", i, tried[i], want[i])
		}
	}
}

type fakeRunner struct {
	write []string
	err   error
	input string
}

func (f *fakeRunner) Convert(_ context.Context, input, outDir string) error {
	f.input = input
	if f.err != nil {
		return f.err
	}
	for _, name := range f.write {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("png"), 0600); err != nil {
			return err
		}
	}
	return nil
}

func buildWorkbook(t *testing.T, sheets ...string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheets[0])
	for _, s := range sheets[1:] {
		f.NewSheet(s)
	}
	for _, s := range sheets {
		f.SetCellValue(s, "A1", "Label")
	}

	path := filepath.Join(t.TempDir(), "form.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestAdapterCapture(t *testing.T) {
	wb := buildWorkbook(t, "Form")
	out := t.TempDir()
	runner := &fakeRunner{write: []string{"original_excel_sheet1.png"}}

	result, err := render.New(runner, discardLogger()).Capture(context.Background(), wb, out, "original_excel")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	paths := result.Paths()
	if len(paths) != 1 || paths[0] != filepath.Join(out, "original_excel_sheet1.png") {
		t.Errorf("paths: got %v", paths)
	}

	if filepath.Base(runner.input) != "original_excel.xlsx" {
		t.Errorf("render input: got %s", runner.input)
	}
	if _, err := os.Stat(runner.input); !os.IsNotExist(err) {
		t.Error("temporary render input not removed")
	}
	if _, err := os.Stat(filepath.Dir(runner.input)); !os.IsNotExist(err) {
		t.Error("temporary render dir not removed")
	}
}

func TestAdapterCapturePartial(t *testing.T) {
	wb := buildWorkbook(t, "Front", "Back")
	out := t.TempDir()
	runner := &fakeRunner{write: []string{"hl-2.png"}}

	result, err := render.New(runner, discardLogger()).Capture(context.Background(), wb, out, "hl")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if len(result.Captures) != 1 || result.Captures[0].Sheet != "Back" {
		t.Errorf("captures: got %+v", result.Captures)
	}
	if len(result.Failures) != 1 || result.Failures[0].Sheet != "Front" {
		t.Errorf("failures: got %+v", result.Failures)
	}
}

func TestAdapterCaptureErrors(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		want   error
	}{
		{
			name:   "runner fails",
			runner: &fakeRunner{err: errors.New("soffice exited 1")},
			want:   render.ErrRenderFailed,
		},
		{
			name:   "no images produced",
			runner: &fakeRunner{},
			want:   render.ErrNoOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := buildWorkbook(t, "Form")

			_, err := render.New(tt.runner, discardLogger()).Capture(context.Background(), wb, t.TempDir(), "x")
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}

			if tt.runner.input != "" {
				if _, err := os.Stat(tt.runner.input); !os.IsNotExist(err) {
					t.Error("temporary render input not removed")
				}
			}
		})
	}
}

func TestAdapterCaptureMissingWorkbook(t *testing.T) {
	runner := &fakeRunner{}
	_, err := render.New(runner, discardLogger()).
		Capture(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"), t.TempDir(), "x")

	if !errors.Is(err, render.ErrRenderFailed) {
		t.Errorf("got %v, want ErrRenderFailed", err)
	}
	if runner.input != "" {
		t.Error("runner should not be invoked for an unreadable workbook")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg render.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		if cfg.Binary != "soffice" || cfg.Mode != render.ModePNG || cfg.Timeout != "2m" || cfg.DPI != 150 {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_RENDER_MODE", "pdf")
		t.Setenv("TEST_RENDER_DPI", "300")

		var cfg render.Config
		env := &render.Env{Mode: "TEST_RENDER_MODE", DPI: "TEST_RENDER_DPI"}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		if cfg.Mode != render.ModePDF || cfg.DPI != 300 {
			t.Errorf("env not applied: %+v", cfg)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		cfg := render.Config{Mode: "svg"}
		if err := cfg.Finalize(nil); !errors.Is(err, render.ErrUnknownMode) {
			t.Errorf("got %v, want ErrUnknownMode", err)
		}
	})

	t.Run("merge", func(t *testing.T) {
		cfg := render.Config{Binary: "soffice", Mode: "png"}
		cfg.Merge(&render.Config{Binary: "/opt/libreoffice/program/soffice"})
		if cfg.Binary != "/opt/libreoffice/program/soffice" || cfg.Mode != "png" {
			t.Errorf("merge: got %+v", cfg)
		}
	})
}

func TestNewRunner(t *testing.T) {
	for _, mode := range []string{render.ModePNG, render.ModePDF} {
		if _, err := render.NewRunner(render.Config{Mode: mode}); err != nil {
			t.Errorf("mode %s: %v", mode, err)
		}
	}

	if _, err := render.NewRunner(render.Config{Mode: "bmp"}); !errors.Is(err, render.ErrUnknownMode) {
		t.Errorf("got %v, want ErrUnknownMode", err)
	}
}
