package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/internal/workflow"
	"github.com/JaimeStill/formscout/pkg/routes"
)

func artifactsMux(t *testing.T) (*http.ServeMux, uuid.UUID) {
	t.Helper()

	workDir := t.TempDir()
	formID := uuid.New()

	dataDir := workflow.DataDir(filepath.Join(workDir, formID.String()))
	files := map[string]string{
		"final_form_definition.json":    `{"B2":"Name"}`,
		"captures/original_excel.png":   "png",
		"validation_result_v1.txt":      "OK",
		"captures/highlighted_v1_1.png": "png",
	}
	for name, content := range files {
		p := filepath.Join(dataDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	h := newArtifactsHandler(workDir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	routes.Register(mux, h.routes())
	return mux, formID
}

func TestArtifactsList(t *testing.T) {
	mux, formID := artifactsMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/artifacts/"+formID.String(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var items []artifact
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}

	names := make(map[string]artifact, len(items))
	for _, it := range items {
		names[it.Name] = it
	}

	if len(items) != 4 {
		t.Errorf("items = %d, want 4", len(items))
	}
	def, ok := names["final_form_definition.json"]
	if !ok {
		t.Fatal("final_form_definition.json not listed")
	}
	if def.SizeBytes != 13 || def.Size != "13.0 B" {
		t.Errorf("size = %d (%s), want 13.0 B", def.SizeBytes, def.Size)
	}
	if _, ok := names["captures/original_excel.png"]; !ok {
		t.Error("nested capture not listed with slash path")
	}
}

func TestArtifactsDownload(t *testing.T) {
	mux, formID := artifactsMux(t)
	base := "/artifacts/" + formID.String()

	t.Run("json file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base+"/final_form_definition.json", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Body.String(); got != `{"B2":"Name"}` {
			t.Errorf("body = %q", got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="final_form_definition.json"` {
			t.Errorf("content disposition = %q", cd)
		}
	})

	t.Run("nested capture", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base+"/captures/original_excel.png", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base+"/structured_form_definition_v9.json", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("directory", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base+"/captures", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestArtifactsErrors(t *testing.T) {
	mux, _ := artifactsMux(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"invalid form id", "/artifacts/latest", http.StatusBadRequest},
		{"unknown form", "/artifacts/" + uuid.NewString(), http.StatusNotFound},
		{"unknown form file", "/artifacts/" + uuid.NewString() + "/final_form_definition.json", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.target, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
