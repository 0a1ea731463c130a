// Package definitions implements the form definition domain: running the
// detection loop for a stored form, keeping the latest definition per form,
// and recording human sign-off or manual corrections of that definition.
package definitions

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/internal/workflow"
)

// Definition is the stored outcome of the latest detection run for a form.
type Definition struct {
	ID           uuid.UUID          `json:"id"`
	FormID       uuid.UUID          `json:"form_id"`
	FormFilename string             `json:"form_filename"`
	Status       workflow.RunStatus `json:"status"`
	Iterations   int                `json:"iterations"`
	Fields       []workflow.Field   `json:"fields"`
	Reason       string             `json:"reason"`
	ErrorMessage *string            `json:"error_message,omitempty"`
	ModelName    string             `json:"model_name"`
	ProviderName string             `json:"provider_name"`
	DetectedAt   time.Time          `json:"detected_at"`
	ValidatedBy  *string            `json:"validated_by"`
	ValidatedAt  *time.Time         `json:"validated_at"`
}

// Flatten returns the fields as the ordered address to description map
// written to final_form_definition.json.
func (d Definition) Flatten() workflow.FlatMap {
	return workflow.FieldSet{Fields: d.Fields}.Flatten()
}

// DetectCommand tunes a detection run. Zero MaxIterations uses the
// configured budget.
type DetectCommand struct {
	MaxIterations int `json:"max_iterations"`
}

// ValidateCommand records human confirmation of a definition.
type ValidateCommand struct {
	ValidatedBy string `json:"validated_by"`
}

// UpdateCommand replaces a definition's fields by hand. UpdatedBy is stored
// as the validator.
type UpdateCommand struct {
	Fields    []workflow.Field `json:"fields"`
	Reason    string           `json:"reason"`
	UpdatedBy string           `json:"updated_by"`
}

// Normalize uppercases and deduplicates the submitted fields. Any malformed
// address rejects the whole command.
func (c UpdateCommand) Normalize() (workflow.FieldSet, error) {
	if strings.TrimSpace(c.UpdatedBy) == "" {
		return workflow.FieldSet{}, fmt.Errorf("%w: updated_by is required", ErrInvalid)
	}

	clean, malformed, _ := workflow.FieldSet{Fields: c.Fields, Reason: c.Reason}.Sanitize()
	if len(malformed) > 0 {
		return workflow.FieldSet{}, fmt.Errorf(
			"%w: malformed cell addresses %s", ErrInvalid, strings.Join(malformed, ", "),
		)
	}
	if clean.Fields == nil {
		clean.Fields = []workflow.Field{}
	}
	return clean, nil
}
