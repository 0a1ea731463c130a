package api

import (
	"github.com/JaimeStill/formscout/internal/definitions"
	"github.com/JaimeStill/formscout/internal/forms"
	"github.com/JaimeStill/formscout/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Definitions definitions.System
	Forms       forms.System
	Prompts     prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	formsSystem := forms.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	definitionsSystem := definitions.New(
		runtime.Database.Connection(),
		runtime.Agent,
		runtime.Workflow,
		runtime.Renderer,
		runtime.Logger,
		runtime.Pagination,
		formsSystem,
		promptsSystem,
	)

	return &Domain{
		Definitions: definitionsSystem,
		Forms:       formsSystem,
		Prompts:     promptsSystem,
	}
}
