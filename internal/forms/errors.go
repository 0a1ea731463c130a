package forms

import (
	"errors"
	"net/http"
)

// Domain errors for form operations.
var (
	ErrNotFound      = errors.New("form not found")
	ErrDuplicate     = errors.New("form already exists")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidFile   = errors.New("file is not a readable xlsx workbook")
	ErrInvalidID     = errors.New("invalid form id")
	ErrInvalidStatus = errors.New("status must be pending, detected, or failed")
)

// MapHTTPStatus maps form domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile), errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
