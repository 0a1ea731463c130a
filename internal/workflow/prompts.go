package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/formscout/internal/prompts"
)

// Section is a titled block of run context appended to a prompt.
type Section struct {
	Title string
	Body  string
}

// JSONSection renders v as indented JSON under title.
func JSONSection(title string, v any) (Section, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Section{}, fmt.Errorf("serialize %s: %w", strings.ToLower(title), err)
	}
	return Section{Title: title, Body: string(data)}, nil
}

// ComposePrompt builds a prompt from the stage's tunable instructions, its
// fixed output specification, and the given sections, in that order.
func ComposePrompt(
	ctx context.Context,
	src prompts.Source,
	stage prompts.Stage,
	sections ...Section,
) (string, error) {
	instructions, err := src.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := src.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	for _, s := range sections {
		sb.WriteString("\n\n")
		sb.WriteString(s.Title)
		sb.WriteString(":\n\n")
		sb.WriteString(s.Body)
	}

	return sb.String(), nil
}
