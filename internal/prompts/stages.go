package prompts

import (
	"encoding/json"
	"slices"
)

// Stage is a reasoning step of the detection loop that a prompt targets.
type Stage string

// Reasoning stages.
const (
	StageEstimate Stage = "estimate"
	StageValidate Stage = "validate"
	StageCorrect  Stage = "correct"
)

var stages = []Stage{
	StageEstimate,
	StageValidate,
	StageCorrect,
}

// Stages returns the known stages in loop order.
func Stages() []Stage {
	return slices.Clone(stages)
}

// UnmarshalJSON rejects unknown stage values.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v, err := ParseStage(raw)
	if err != nil {
		return err
	}

	*s = v
	return nil
}

// ParseStage validates s as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
