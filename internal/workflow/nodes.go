package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// KeyState holds the State snapshot in the graph's state bag.
const KeyState = "formscout_state"

// stepFunc performs one step on a private copy of the snapshot. It returns
// the updated copy and the event to report; a non-nil error reports
// EventFailed.
type stepFunc func(ctx context.Context, rt *Runtime, s State) (State, Event, error)

// stepNode adapts fn into a graph node. Step failures never leave the node
// as errors: they become an ERROR snapshot carrying the cause chain.
func stepNode(rt *Runtime, step Step, fn stepFunc) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, bag state.State) (state.State, error) {
		snap, err := snapshot(bag)
		if err != nil {
			return bag, fmt.Errorf("%s: %w", step, err)
		}
		if snap.Step != step {
			return bag, fmt.Errorf("%s: snapshot is at step %s", step, snap.Step)
		}

		next, event, err := fn(ctx, rt, snap.clone())
		if err != nil {
			next.Status = StatusError
			next.ErrorMessage = err.Error()
			event = EventFailed

			rt.Logger.ErrorContext(
				ctx, "step failed",
				"step", step,
				"iteration", next.CurrentIteration,
				"error", err,
			)
		}

		next.Step = Transition(step, event)

		rt.Logger.InfoContext(
			ctx, "step complete",
			"step", step,
			"event", event,
			"next", next.Step,
			"iteration", next.CurrentIteration,
		)

		return bag.Set(KeyState, next), nil
	})
}

// DoneNode persists the final snapshot to workflow_state.json. Both
// terminal steps route here.
func DoneNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, bag state.State) (state.State, error) {
		snap, err := snapshot(bag)
		if err != nil {
			return bag, fmt.Errorf("done: %w", err)
		}

		if err := writeJSON(artifactsFor(snap).path(StateFile), snap); err != nil {
			rt.Logger.ErrorContext(ctx, "persist workflow state", "error", err)
		}

		return bag, nil
	})
}

func snapshot(bag state.State) (State, error) {
	val, ok := bag.Get(KeyState)
	if !ok {
		return State{}, fmt.Errorf("missing %s in state", KeyState)
	}

	s, ok := val.(State)
	if !ok {
		return State{}, fmt.Errorf("%s is not State", KeyState)
	}

	return s, nil
}
