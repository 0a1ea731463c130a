package prompts

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/formscout/pkg/query"
	"github.com/JaimeStill/formscout/pkg/repository"
)

const columns = "id, name, stage, instructions, description, active"

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "id").
	Project("name", "name").
	Project("stage", "stage").
	Project("instructions", "instructions").
	Project("description", "description").
	Project("active", "active")

var defaultSort = query.SortField{Field: "name"}

// Filters narrows prompt listings. Nil fields are ignored; Name matches
// case-insensitively by substring.
type Filters struct {
	Stage  *Stage  `json:"stage,omitempty"`
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds the filter conditions to b.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("stage", f.Stage).
		WhereContains("name", f.Name).
		WhereEquals("active", f.Active)
}

// FiltersFromQuery reads stage, name, and active from query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s, err := ParseStage(values.Get("stage")); err == nil {
		f.Stage = &s
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if v, err := strconv.ParseBool(values.Get("active")); err == nil {
		f.Active = &v
	}

	return f
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Stage,
		&p.Instructions,
		&p.Description,
		&p.Active,
	)
	return p, err
}
