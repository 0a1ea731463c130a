package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/formscout/internal/prompts"
	"github.com/JaimeStill/formscout/pkg/formatting"
)

// correctStep asks the model to patch the FieldSet in light of the
// representative verdict, merges the patch, and starts the next iteration.
func correctStep(ctx context.Context, rt *Runtime, s State) (State, Event, error) {
	if s.Verdict == nil || len(s.HighlightedCapturePaths) == 0 {
		return s, EventFailed, fmt.Errorf("%w: no review to correct against", ErrCorrectFailed)
	}

	fields, err := JSONSection("Current fields", s.FieldSet)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrCorrectFailed, err)
	}

	review, err := JSONSection("Review", s.Verdict)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrCorrectFailed, err)
	}

	prompt, err := ComposePrompt(ctx, rt.Prompts, prompts.StageCorrect, fields, review)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrCorrectFailed, err)
	}

	content, err := rt.Reasoner.Reason(ctx, Request{
		Stage:  prompts.StageCorrect,
		Prompt: prompt,
		Images: []string{s.OriginalCapturePath, s.HighlightedCapturePaths[0]},
	})
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrCorrectFailed, err)
	}

	instr, err := formatting.Parse[CorrectionInstruction](content)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w: %w", ErrCorrectFailed, ErrSchema, err)
	}

	before := s.FieldSet.Flatten()
	next := sanitize(ctx, rt, s.FieldSet.Apply(instr))
	if len(next.Fields) == 0 {
		rt.Logger.WarnContext(ctx, "correction removed every field", "iteration", s.CurrentIteration)
	}

	s.CurrentIteration++
	s.FieldSet = next

	a := artifactsFor(s)
	if err := a.writeFields(next, s.CurrentIteration); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrCorrectFailed, err)
	}

	changes := lineDiff(before.Lines(), next.Flatten().Lines())
	if err := writeText(a.versioned(fieldChangesFile, s.CurrentIteration), changes); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrCorrectFailed, err)
	}

	rt.Logger.InfoContext(
		ctx, "fields corrected",
		"iteration", s.CurrentIteration,
		"added", len(instr.AddFields),
		"deleted", len(instr.DeleteFields),
		"fields", len(next.Fields),
	)

	return s, EventSucceeded, nil
}
