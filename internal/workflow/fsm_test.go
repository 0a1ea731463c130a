package workflow_test

import (
	"testing"

	"github.com/JaimeStill/formscout/internal/workflow"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from  workflow.Step
		event workflow.Event
		want  workflow.Step
	}{
		{workflow.StepExtract, workflow.EventSucceeded, workflow.StepEstimate},
		{workflow.StepEstimate, workflow.EventSucceeded, workflow.StepHighlight},
		{workflow.StepHighlight, workflow.EventSucceeded, workflow.StepCapture},
		{workflow.StepCapture, workflow.EventSucceeded, workflow.StepValidate},
		{workflow.StepValidate, workflow.EventAccepted, workflow.StepFinalize},
		{workflow.StepValidate, workflow.EventExhausted, workflow.StepFinalize},
		{workflow.StepValidate, workflow.EventRejected, workflow.StepCorrect},
		{workflow.StepCorrect, workflow.EventSucceeded, workflow.StepHighlight},
		{workflow.StepFinalize, workflow.EventSucceeded, workflow.StepComplete},
		{workflow.StepValidate, workflow.EventSucceeded, workflow.StepError},
		{workflow.StepEstimate, workflow.EventAccepted, workflow.StepError},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			if got := workflow.Transition(tt.from, tt.event); got != tt.want {
				t.Errorf("Transition(%s, %s) = %s, want %s", tt.from, tt.event, got, tt.want)
			}
		})
	}
}

func TestTransitionTotal(t *testing.T) {
	known := make(map[workflow.Step]bool)
	for _, s := range workflow.Steps {
		known[s] = true
	}

	for _, from := range workflow.Steps {
		for _, event := range workflow.Events {
			got := workflow.Transition(from, event)

			if !known[got] {
				t.Errorf("Transition(%s, %s) = unknown step %q", from, event, got)
			}

			switch {
			case from.Terminal():
				if got != from {
					t.Errorf("terminal %s moved to %s on %s", from, got, event)
				}
			case event == workflow.EventFailed:
				if got != workflow.StepError {
					t.Errorf("Transition(%s, failed) = %s, want error", from, got)
				}
			}
		}
	}
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name    string
		status  workflow.VerdictStatus
		current int
		max     int
		want    workflow.Event
	}{
		{"ok below limit", workflow.VerdictOK, 1, 5, workflow.EventAccepted},
		{"ok at limit", workflow.VerdictOK, 5, 5, workflow.EventAccepted},
		{"revision one below limit", workflow.VerdictNeedsRevision, 4, 5, workflow.EventRejected},
		{"revision at limit", workflow.VerdictNeedsRevision, 5, 5, workflow.EventExhausted},
		{"revision single iteration", workflow.VerdictNeedsRevision, 1, 1, workflow.EventExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workflow.ValidateEvent(tt.status, tt.current, tt.max)
			if got != tt.want {
				t.Errorf("ValidateEvent(%s, %d, %d) = %s, want %s", tt.status, tt.current, tt.max, got, tt.want)
			}

			next := workflow.Transition(workflow.StepValidate, got)
			if tt.current >= tt.max && next == workflow.StepCorrect {
				t.Errorf("correction scheduled at the iteration limit")
			}
		})
	}
}
