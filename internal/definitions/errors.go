package definitions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/formscout/internal/forms"
)

// Domain errors for definition operations.
var (
	ErrNotFound      = errors.New("definition not found")
	ErrDuplicate     = errors.New("definition already exists")
	ErrInvalid       = errors.New("invalid definition request")
	ErrInvalidStatus = errors.New("only a complete definition can be validated")
	ErrInProgress    = errors.New("detection already running for form")
)

// MapHTTPStatus maps definition domain errors to HTTP status codes. A
// missing form is reported as not found.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, forms.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
