package definitions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/pkg/pagination"
)

// System defines the public contract for definition domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Definition], error)

	Find(ctx context.Context, id uuid.UUID) (*Definition, error)
	FindByForm(ctx context.Context, formID uuid.UUID) (*Definition, error)

	// Detect runs the detection loop for a stored form and replaces its
	// definition with the outcome, including failed runs.
	Detect(ctx context.Context, formID uuid.UUID, cmd DetectCommand) (*Definition, error)
	Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Definition, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Definition, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
