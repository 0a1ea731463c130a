package workflow

import (
	"context"
	"fmt"
)

// finalizeStep writes the flattened and structured final definitions.
func finalizeStep(ctx context.Context, rt *Runtime, s State) (State, Event, error) {
	a := artifactsFor(s)

	definition := a.path(finalDefinitionFile)
	if err := writeJSON(definition, s.FieldSet.Flatten()); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrFinalizeFailed, err)
	}

	structured := a.path(finalStructuredFile)
	if err := writeJSON(structured, s.FieldSet); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrFinalizeFailed, err)
	}

	s.FinalDefinitionPath = definition
	s.FinalStructuredPath = structured
	s.Status = StatusComplete

	rt.Logger.InfoContext(
		ctx, "form definition finalized",
		"iteration", s.CurrentIteration,
		"fields", len(s.FieldSet.Fields),
		"verdict", s.AggregateStatus,
	)

	return s, EventSucceeded, nil
}
