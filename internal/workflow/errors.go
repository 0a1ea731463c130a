// Package workflow runs the form field-detection loop: extract the workbook,
// render it, ask the reasoning model for input fields, highlight and
// re-render them, have the model review its own proposal, and correct it
// until the review passes or the iteration budget runs out.
package workflow

import "errors"

// Sentinel errors for workflow steps.
var (
	ErrExtractFailed   = errors.New("workbook extraction failed")
	ErrEstimateFailed  = errors.New("field estimation failed")
	ErrHighlightFailed = errors.New("highlighting failed")
	ErrCaptureFailed   = errors.New("capture failed")
	ErrValidateFailed  = errors.New("validation failed")
	ErrCorrectFailed   = errors.New("correction failed")
	ErrFinalizeFailed  = errors.New("finalize failed")
	ErrNoCaptures      = errors.New("no highlighted captures to validate")
	ErrSchema          = errors.New("response does not match the requested schema")
)
