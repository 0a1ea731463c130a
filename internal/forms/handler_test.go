package forms_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/formscout/internal/forms"
	"github.com/JaimeStill/formscout/pkg/pagination"
	"github.com/JaimeStill/formscout/pkg/routes"
)

type mockSystem struct {
	listFn   func(ctx context.Context, page pagination.PageRequest, filters forms.Filters) (*pagination.PageResult[forms.Form], error)
	findFn   func(ctx context.Context, id uuid.UUID) (*forms.Form, error)
	createFn func(ctx context.Context, cmd forms.CreateCommand) (*forms.Form, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSystem) Handler(maxUploadSize int64) *forms.Handler {
	return newTestHandler(m, maxUploadSize)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters forms.Filters) (*pagination.PageResult[forms.Form], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*forms.Form, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd forms.CreateCommand) (*forms.Form, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Fetch(context.Context, uuid.UUID, string) (string, *forms.Form, error) {
	return "", nil, errors.New("not used")
}

func (m *mockSystem) UpdateStatus(context.Context, uuid.UUID, forms.Status) (*forms.Form, error) {
	return nil, errors.New("not used")
}

func newTestHandler(sys forms.System, maxUploadSize int64) *forms.Handler {
	return forms.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		maxUploadSize,
	)
}

func setupMux(sys forms.System) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(1<<20).Routes())
	return mux
}

func sampleForm() forms.Form {
	return forms.Form{
		ID:          uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"),
		Filename:    "expense-report.xlsx",
		ContentType: forms.ContentTypeXLSX,
		SizeBytes:   6144,
		SheetCount:  2,
		StorageKey:  "forms/7c9e6679-7425-40de-944b-e07fc1f90ae7/expense-report.xlsx",
		Status:      forms.StatusPending,
		UploadedAt:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue("Sheet1", "A1", "Employee"); err != nil {
		t.Fatalf("set cell: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return &body, w.FormDataContentType()
}

func TestHandlerList(t *testing.T) {
	form := sampleForm()
	var captured forms.Filters

	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f forms.Filters) (*pagination.PageResult[forms.Form], error) {
			captured = f
			result := pagination.NewPageResult([]forms.Form{form}, 1, 1, 20)
			return &result, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, httptest.NewRequest("GET", "/forms?status=pending", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[forms.Form]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Data) != 1 || result.Data[0].ID != form.ID {
		t.Errorf("result = %+v, want the sample form", result)
	}
	if captured.Status == nil || *captured.Status != forms.StatusPending {
		t.Errorf("status filter = %v, want pending", captured.Status)
	}
}

func TestHandlerFind(t *testing.T) {
	form := sampleForm()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*forms.Form, error) {
			if id != form.ID {
				return nil, forms.ErrNotFound
			}
			return &form, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"found", "/forms/" + form.ID.String(), http.StatusOK},
		{"invalid uuid", "/forms/expense", http.StatusBadRequest},
		{"missing", "/forms/" + uuid.NewString(), http.StatusNotFound},
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

func TestHandlerUpload(t *testing.T) {
	data := workbookBytes(t)
	var captured forms.CreateCommand

	sys := &mockSystem{
		createFn: func(_ context.Context, cmd forms.CreateCommand) (*forms.Form, error) {
			captured = cmd
			form := sampleForm()
			form.Filename = cmd.Filename
			return &form, nil
		},
	}

	body, contentType := multipartBody(t, "file", "expense-report.xlsx", data)
	req := httptest.NewRequest("POST", "/forms", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if captured.Filename != "expense-report.xlsx" {
		t.Errorf("filename = %q", captured.Filename)
	}
	if !bytes.Equal(captured.Data, data) {
		t.Error("uploaded bytes were not passed through unchanged")
	}
	if captured.ContentType != forms.ContentTypeXLSX {
		t.Errorf("content type = %q, want xlsx fallback", captured.ContentType)
	}
}

func TestHandlerUploadRejected(t *testing.T) {
	sys := &mockSystem{
		createFn: func(context.Context, forms.CreateCommand) (*forms.Form, error) {
			return nil, forms.ErrInvalidFile
		},
	}
	mux := setupMux(sys)

	t.Run("missing file field", func(t *testing.T) {
		body, contentType := multipartBody(t, "document", "a.xlsx", []byte("x"))
		req := httptest.NewRequest("POST", "/forms", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not a workbook", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "notes.txt", []byte("plain text"))
		req := httptest.NewRequest("POST", "/forms", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/forms", bytes.NewReader([]byte("{}"))))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	var captured forms.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f forms.Filters) (*pagination.PageResult[forms.Form], error) {
			captured = f
			result := pagination.NewPageResult([]forms.Form{}, 0, 1, 20)
			return &result, nil
		},
	}

	body := bytes.NewReader([]byte(`{"page": 1, "filename": "audit", "status": "failed"}`))
	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, httptest.NewRequest("POST", "/forms/search", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.Filename == nil || *captured.Filename != "audit" {
		t.Errorf("filename filter = %v, want audit", captured.Filename)
	}
	if captured.Status == nil || *captured.Status != forms.StatusFailed {
		t.Errorf("status filter = %v, want failed", captured.Status)
	}
}

func TestHandlerDelete(t *testing.T) {
	form := sampleForm()
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != form.ID {
				return forms.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"deleted", "/forms/" + form.ID.String(), http.StatusNoContent},
		{"missing", "/forms/" + uuid.NewString(), http.StatusNotFound},
		{"invalid uuid", "/forms/1", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("DELETE", tt.target, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
