package forms

import (
	"net/url"

	"github.com/JaimeStill/formscout/pkg/query"
	"github.com/JaimeStill/formscout/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "forms", "f").
	Project("id", "id").
	Project("filename", "filename").
	Project("content_type", "content_type").
	Project("size_bytes", "size_bytes").
	Project("sheet_count", "sheet_count").
	Project("storage_key", "storage_key").
	Project("status", "status").
	Project("uploaded_at", "uploaded_at").
	Project("updated_at", "updated_at").
	Join("LEFT JOIN", "public", "definitions", "d", "f.id = d.form_id").
	ProjectFrom("d", "iterations", "iterations").
	ProjectFrom("d", "detected_at", "detected_at")

var defaultSort = query.SortField{
	Field:      "uploaded_at",
	Descending: true,
}

// Filters contains optional filtering criteria for form queries.
// Nil fields are ignored. Status and ContentType match exactly;
// Filename matches case-insensitively by substring.
type Filters struct {
	Status      *Status `json:"status,omitempty"`
	Filename    *string `json:"filename,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("status", f.Status).
		WhereContains("filename", f.Filename).
		WhereEquals("content_type", f.ContentType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s, err := ParseStatus(values.Get("status")); err == nil {
		f.Status = &s
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	return f
}

// ParseStatus validates s as a form status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusDetected, StatusFailed:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func scanForm(s repository.Scanner) (Form, error) {
	var f Form
	err := s.Scan(
		&f.ID,
		&f.Filename,
		&f.ContentType,
		&f.SizeBytes,
		&f.SheetCount,
		&f.StorageKey,
		&f.Status,
		&f.UploadedAt,
		&f.UpdatedAt,
		&f.Iterations,
		&f.DetectedAt,
	)
	return f, err
}
