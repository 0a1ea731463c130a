// Package render turns workbooks into per-sheet raster images through an
// external office renderer, then locates the images the renderer produced.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JaimeStill/formscout/internal/workbook"
)

// Capturer renders a workbook's sheets into outDir using base as the output
// name stem.
type Capturer interface {
	Capture(ctx context.Context, workbookPath, outDir, base string) (Result, error)
}

// Adapter prepares a scoped copy of the workbook, runs the renderer on it,
// and probes for one image per sheet.
type Adapter struct {
	runner     Runner
	candidates []Candidate
	logger     *slog.Logger
}

// New creates an Adapter around runner using the default Candidates.
func New(runner Runner, logger *slog.Logger) *Adapter {
	return &Adapter{
		runner:     runner,
		candidates: Candidates,
		logger:     logger.With("system", "render"),
	}
}

// FromConfig creates an Adapter with the runner selected by cfg.
func FromConfig(cfg Config, logger *slog.Logger) (*Adapter, error) {
	runner, err := NewRunner(cfg)
	if err != nil {
		return nil, err
	}
	return New(runner, logger), nil
}

// Capture renders workbookPath into outDir. The render input is a temporary
// copy with print areas set, removed on every return path. Sheets without
// an image are logged and reported in Result.Failures; if no sheet rendered
// the error wraps ErrNoOutput.
func (a *Adapter) Capture(ctx context.Context, workbookPath, outDir, base string) (Result, error) {
	sheets, err := workbook.SheetNames(workbookPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read sheets: %w", ErrRenderFailed, err)
	}

	tmp, err := os.MkdirTemp("", "formscout-render-*")
	if err != nil {
		return Result{}, fmt.Errorf("%w: create temp dir: %w", ErrRenderFailed, err)
	}
	defer os.RemoveAll(tmp)

	input := filepath.Join(tmp, base+".xlsx")
	if err := workbook.PrepareForCapture(workbookPath, input); err != nil {
		return Result{}, fmt.Errorf("%w: prepare workbook: %w", ErrRenderFailed, err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return Result{}, fmt.Errorf("%w: create output dir: %w", ErrRenderFailed, err)
	}

	if err := a.runner.Convert(ctx, input, outDir); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	result := Probe(outDir, base, sheets, a.candidates)

	for _, f := range result.Failures {
		a.logger.WarnContext(ctx, "sheet image not found", "sheet", f.Sheet, "index", f.Index, "tried", f.Tried)
	}

	if len(result.Captures) == 0 {
		return result, fmt.Errorf("%w: %s (%d sheets)", ErrNoOutput, base, len(sheets))
	}

	a.logger.InfoContext(
		ctx, "workbook rendered",
		"base", base,
		"sheets", len(sheets),
		"captured", len(result.Captures),
	)

	return result, nil
}
