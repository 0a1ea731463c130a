package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/formscout/internal/workbook"
)

// highlightStep marks the current fields on a fresh copy of the original
// workbook, so the output depends only on the workbook and the FieldSet.
func highlightStep(ctx context.Context, rt *Runtime, s State) (State, Event, error) {
	dst := artifactsFor(s).versioned(highlightedWorkbookFile, s.CurrentIteration)

	res, err := workbook.Highlight(s.ExcelFile, dst, s.FieldSet.Addresses())
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrHighlightFailed, err)
	}

	if len(res.Skipped) > 0 {
		rt.Logger.WarnContext(ctx, "skipped malformed addresses while highlighting", "addresses", res.Skipped)
	}

	s.HighlightedWorkbookPath = dst
	s.HighlightedCapturePaths = nil
	s.Verdict = nil
	s.AggregateStatus = ""

	rt.Logger.InfoContext(
		ctx, "fields highlighted",
		"iteration", s.CurrentIteration,
		"cells", res.Applied,
	)

	return s, EventSucceeded, nil
}

// captureStep renders the highlighted workbook, one image per sheet.
func captureStep(ctx context.Context, rt *Runtime, s State) (State, Event, error) {
	a := artifactsFor(s)
	base := fmt.Sprintf(highlightedCaptureBase, s.CurrentIteration)

	res, err := rt.Capturer.Capture(ctx, s.HighlightedWorkbookPath, a.captures(), base)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	s.HighlightedCapturePaths = res.Paths()

	rt.Logger.InfoContext(
		ctx, "highlighted workbook captured",
		"iteration", s.CurrentIteration,
		"captures", len(res.Captures),
		"failures", len(res.Failures),
	)

	return s, EventSucceeded, nil
}
