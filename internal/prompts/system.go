package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/pkg/pagination"
)

// Source supplies the instruction and specification text for a stage.
type Source interface {
	// Instructions returns the effective instructions for stage.
	Instructions(ctx context.Context, stage Stage) (string, error)
	// Spec returns the output specification for stage.
	Spec(ctx context.Context, stage Stage) (string, error)
}

// System defines the prompt domain: a Source backed by stored overrides,
// plus management of those overrides.
type System interface {
	Source

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)
}

type defaults struct{}

// Defaults returns a Source serving only the built-in text, for runs
// without a database.
func Defaults() Source {
	return defaults{}
}

func (defaults) Instructions(_ context.Context, stage Stage) (string, error) {
	return Instructions(stage)
}

func (defaults) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}
