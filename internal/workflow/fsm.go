package workflow

// Step is a state of the detection loop.
type Step string

// Loop steps. Complete and Error are terminal.
const (
	StepExtract   Step = "extract"
	StepEstimate  Step = "estimate"
	StepHighlight Step = "highlight"
	StepCapture   Step = "capture"
	StepValidate  Step = "validate"
	StepCorrect   Step = "correct"
	StepFinalize  Step = "finalize"
	StepComplete  Step = "complete"
	StepError     Step = "error"
)

// Steps lists every step in loop order.
var Steps = []Step{
	StepExtract,
	StepEstimate,
	StepHighlight,
	StepCapture,
	StepValidate,
	StepCorrect,
	StepFinalize,
	StepComplete,
	StepError,
}

// Terminal reports whether s absorbs every event.
func (s Step) Terminal() bool {
	return s == StepComplete || s == StepError
}

// Event is the outcome a step reports.
type Event string

// Step outcomes. Accepted, Exhausted, and Rejected are reported only by
// validate.
const (
	EventSucceeded Event = "succeeded"
	EventFailed    Event = "failed"
	EventAccepted  Event = "accepted"
	EventExhausted Event = "exhausted"
	EventRejected  Event = "rejected"
)

// Events lists every event.
var Events = []Event{
	EventSucceeded,
	EventFailed,
	EventAccepted,
	EventExhausted,
	EventRejected,
}

type edge struct {
	from  Step
	event Event
}

var transitions = map[edge]Step{
	{StepExtract, EventSucceeded}:   StepEstimate,
	{StepEstimate, EventSucceeded}:  StepHighlight,
	{StepHighlight, EventSucceeded}: StepCapture,
	{StepCapture, EventSucceeded}:   StepValidate,
	{StepValidate, EventAccepted}:   StepFinalize,
	{StepValidate, EventExhausted}:  StepFinalize,
	{StepValidate, EventRejected}:   StepCorrect,
	{StepCorrect, EventSucceeded}:   StepHighlight,
	{StepFinalize, EventSucceeded}:  StepComplete,
}

// Transition returns the step that follows from after event. It is total:
// terminal steps return themselves, failures go to StepError, and any pair
// outside the table goes to StepError.
func Transition(from Step, event Event) Step {
	if from.Terminal() {
		return from
	}
	if event == EventFailed {
		return StepError
	}
	if to, ok := transitions[edge{from, event}]; ok {
		return to
	}
	return StepError
}

// ValidateEvent decides the event out of validate. An OK verdict is
// accepted; otherwise the budget decides between correcting and
// finalizing the best effort.
func ValidateEvent(status VerdictStatus, current, maxIterations int) Event {
	switch {
	case status == VerdictOK:
		return EventAccepted
	case current >= maxIterations:
		return EventExhausted
	default:
		return EventRejected
	}
}
