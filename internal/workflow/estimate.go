package workflow

import (
	"context"
	"fmt"
	"os"

	"github.com/JaimeStill/formscout/internal/prompts"
	"github.com/JaimeStill/formscout/pkg/formatting"
)

// estimateStep asks the model for the initial FieldSet from the extracted
// text and the original capture.
func estimateStep(ctx context.Context, rt *Runtime, s State) (State, Event, error) {
	text, err := os.ReadFile(s.ExtractedTextPath)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrEstimateFailed, err)
	}

	prompt, err := ComposePrompt(
		ctx, rt.Prompts, prompts.StageEstimate,
		Section{Title: "Workbook contents", Body: string(text)},
	)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrEstimateFailed, err)
	}

	content, err := rt.Reasoner.Reason(ctx, Request{
		Stage:  prompts.StageEstimate,
		Prompt: prompt,
		Images: []string{s.OriginalCapturePath},
	})
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrEstimateFailed, err)
	}

	fs, err := formatting.Parse[FieldSet](content)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w: %w", ErrEstimateFailed, ErrSchema, err)
	}

	fs = sanitize(ctx, rt, fs)
	if len(fs.Fields) == 0 {
		return s, EventFailed, fmt.Errorf("%w: %w: no fields proposed", ErrEstimateFailed, ErrSchema)
	}

	if err := artifactsFor(s).writeFields(fs, s.CurrentIteration); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrEstimateFailed, err)
	}
	s.FieldSet = fs

	rt.Logger.InfoContext(
		ctx, "fields estimated",
		"iteration", s.CurrentIteration,
		"fields", len(fs.Fields),
	)

	return s, EventSucceeded, nil
}

// sanitize drops malformed addresses and collapses duplicates, logging
// both.
func sanitize(ctx context.Context, rt *Runtime, fs FieldSet) FieldSet {
	clean, malformed, duplicates := fs.Sanitize()

	if len(malformed) > 0 {
		rt.Logger.WarnContext(ctx, "skipping malformed cell addresses", "addresses", malformed)
	}
	if len(duplicates) > 0 {
		rt.Logger.WarnContext(ctx, "collapsing duplicate cell addresses", "addresses", duplicates)
	}

	return clean
}
