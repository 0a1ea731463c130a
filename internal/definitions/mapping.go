package definitions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/internal/workflow"
	"github.com/JaimeStill/formscout/pkg/query"
	"github.com/JaimeStill/formscout/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "definitions", "d").
	Project("id", "id").
	Project("form_id", "form_id").
	ProjectFrom("f", "filename", "form_filename").
	Project("status", "status").
	Project("iterations", "iterations").
	Project("fields", "fields").
	Project("reason", "reason").
	Project("error_message", "error_message").
	Project("model_name", "model_name").
	Project("provider_name", "provider_name").
	Project("detected_at", "detected_at").
	Project("validated_by", "validated_by").
	Project("validated_at", "validated_at").
	Join("JOIN", "public", "forms", "f", "f.id = d.form_id")

var defaultSort = query.SortField{
	Field:      "detected_at",
	Descending: true,
}

// Filters contains optional filtering criteria for definition queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	Status      *workflow.RunStatus `json:"status,omitempty"`
	FormID      *uuid.UUID          `json:"form_id,omitempty"`
	ModelName   *string             `json:"model_name,omitempty"`
	ValidatedBy *string             `json:"validated_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("status", f.Status).
		WhereEquals("form_id", f.FormID).
		WhereEquals("model_name", f.ModelName).
		WhereEquals("validated_by", f.ValidatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	switch s := workflow.RunStatus(strings.ToUpper(values.Get("status"))); s {
	case workflow.StatusComplete, workflow.StatusError:
		f.Status = &s
	}

	if d := values.Get("form_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.FormID = &id
		}
	}

	if m := values.Get("model_name"); m != "" {
		f.ModelName = &m
	}

	if v := values.Get("validated_by"); v != "" {
		f.ValidatedBy = &v
	}

	return f
}

func scanDefinition(s repository.Scanner) (Definition, error) {
	var d Definition
	var fieldsRaw []byte

	err := s.Scan(
		&d.ID,
		&d.FormID,
		&d.FormFilename,
		&d.Status,
		&d.Iterations,
		&fieldsRaw,
		&d.Reason,
		&d.ErrorMessage,
		&d.ModelName,
		&d.ProviderName,
		&d.DetectedAt,
		&d.ValidatedBy,
		&d.ValidatedAt,
	)

	if err != nil {
		return d, err
	}

	if len(fieldsRaw) > 0 {
		if err := json.Unmarshal(fieldsRaw, &d.Fields); err != nil {
			return d, fmt.Errorf("unmarshal fields: %w", err)
		}
	}

	if d.Fields == nil {
		d.Fields = []workflow.Field{}
	}

	return d, nil
}
