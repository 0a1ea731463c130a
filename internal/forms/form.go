// Package forms implements the workbook template domain: upload, listing,
// and removal of the Excel forms that detection runs against. Workbooks are
// kept in blob storage; metadata lives in PostgreSQL.
package forms

import (
	"time"

	"github.com/google/uuid"
)

// ContentTypeXLSX is the media type stored for uploads that arrive without
// a usable Content-Type header.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Status tracks where a form stands in detection.
type Status string

const (
	StatusPending  Status = "pending"
	StatusDetected Status = "detected"
	StatusFailed   Status = "failed"
)

// Form is an uploaded workbook template. Iterations and DetectedAt come
// from the form's stored definition and are nil until detection has run.
type Form struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	SheetCount  int        `json:"sheet_count"`
	StorageKey  string     `json:"storage_key"`
	Status      Status     `json:"status"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Iterations  *int       `json:"iterations,omitempty"`
	DetectedAt  *time.Time `json:"detected_at,omitempty"`
}

// CreateCommand carries an uploaded workbook. Data holds the raw bytes.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
}
