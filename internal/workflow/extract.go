package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JaimeStill/formscout/internal/workbook"
)

// extractStep wipes the artifact directory, writes the workbook's text
// description, and captures the unmodified workbook. The first sheet's
// capture becomes captures/original_excel.png.
func extractStep(ctx context.Context, rt *Runtime, s State) (State, Event, error) {
	a := artifactsFor(s)
	if err := a.reset(); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	text, err := workbook.Extract(s.ExcelFile)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	textPath := a.path(extractedTextFile)
	if err := writeText(textPath, text); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}
	s.ExtractedTextPath = textPath

	res, err := rt.Capturer.Capture(ctx, s.ExcelFile, a.captures(), originalCaptureBase)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: capture original: %w", ErrExtractFailed, err)
	}
	if len(res.Captures) == 0 {
		return s, EventFailed, fmt.Errorf("%w: capture original: %w", ErrExtractFailed, ErrNoCaptures)
	}

	original := filepath.Join(a.captures(), originalCaptureBase+".png")
	if first := res.Captures[0].Path; first != original {
		if err := os.Rename(first, original); err != nil {
			return s, EventFailed, fmt.Errorf("%w: %w", ErrExtractFailed, err)
		}
	}
	s.OriginalCapturePath = original

	rt.Logger.InfoContext(
		ctx, "workbook extracted",
		"excel_file", s.ExcelFile,
		"sheets", len(res.Captures)+len(res.Failures),
		"captured", len(res.Captures),
	)

	return s, EventSucceeded, nil
}
