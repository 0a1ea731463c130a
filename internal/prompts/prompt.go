// Package prompts manages the instructions sent to the reasoning model at
// each stage of field detection. Built-in instructions can be replaced per
// stage by an active database override; output specifications are fixed.
package prompts

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prompt is a named instruction override for a stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create an override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate checks that required fields are present.
func (c CreateCommand) Validate() error {
	return validateCommand(c.Name, c.Stage, c.Instructions)
}

// UpdateCommand carries the replacement values for an override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate checks that required fields are present.
func (c UpdateCommand) Validate() error {
	return validateCommand(c.Name, c.Stage, c.Instructions)
}

func validateCommand(name string, stage Stage, instructions string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalid)
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	if strings.TrimSpace(instructions) == "" {
		return fmt.Errorf("%w: instructions required", ErrInvalid)
	}
	return nil
}
