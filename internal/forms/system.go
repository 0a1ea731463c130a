package forms

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/pkg/pagination"
)

// System defines the public contract for form domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Form], error)

	Find(ctx context.Context, id uuid.UUID) (*Form, error)
	Create(ctx context.Context, cmd CreateCommand) (*Form, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Fetch downloads the form's workbook into dir and returns its path.
	Fetch(ctx context.Context, id uuid.UUID, dir string) (string, *Form, error)
	// UpdateStatus records the outcome of a detection run.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Form, error)
}
