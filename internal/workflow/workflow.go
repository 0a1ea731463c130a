package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

const doneNode = "done"

var stepFuncs = map[Step]stepFunc{
	StepExtract:   extractStep,
	StepEstimate:  estimateStep,
	StepHighlight: highlightStep,
	StepCapture:   captureStep,
	StepValidate:  validateStep,
	StepCorrect:   correctStep,
	StepFinalize:  finalizeStep,
}

// Execute runs the detection loop for one workbook. Step failures are
// reported through the result's ERROR status and message; the returned
// error covers only invalid input and graph faults.
func Execute(ctx context.Context, rt *Runtime, in Input) (*Result, error) {
	initial, err := newState(in)
	if err != nil {
		return nil, err
	}

	graph, err := buildGraph(rt, initial.MaxIterations)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	rt.Logger.InfoContext(
		ctx, "detection started",
		"excel_file", initial.ExcelFile,
		"output_dir", initial.OutputDir,
		"max_iterations", initial.MaxIterations,
	)

	finalState, err := graph.Execute(ctx, state.New(nil).Set(KeyState, initial))
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	s, err := snapshot(finalState)
	if err != nil {
		return nil, err
	}

	rt.Logger.InfoContext(
		ctx, "detection finished",
		"status", s.Status,
		"iterations", s.CurrentIteration,
		"fields", len(s.FieldSet.Fields),
	)

	return &Result{
		Status:       s.Status,
		ErrorMessage: s.ErrorMessage,
		Iterations:   s.CurrentIteration,
		FieldSet:     s.FieldSet,
		Definition:   s.FieldSet.Flatten(),
		DataDir:      DataDir(s.OutputDir),
		State:        s,
		CompletedAt:  time.Now(),
	}, nil
}

func newState(in Input) (State, error) {
	if in.ExcelFile == "" {
		return State{}, errors.New("excel file required")
	}

	excel, err := filepath.Abs(in.ExcelFile)
	if err != nil {
		return State{}, fmt.Errorf("resolve excel file: %w", err)
	}

	out := in.OutputDir
	if out == "" {
		out = filepath.Dir(excel)
	}
	out, err = filepath.Abs(out)
	if err != nil {
		return State{}, fmt.Errorf("resolve output dir: %w", err)
	}

	limit := in.MaxIterations
	if limit < 1 {
		limit = DefaultMaxIterations
	}

	return State{
		ExcelFile:        excel,
		OutputDir:        out,
		MaxIterations:    limit,
		CurrentIteration: 1,
		Step:             StepExtract,
		Status:           StatusInProgress,
	}, nil
}

// buildGraph derives the state graph from the transition table: one node
// per non-terminal step, one edge per distinct target, each guarded by the
// snapshot's next step. Terminal steps share the done node. The graph's
// execution ceiling is sized to the iteration budget so the loop, not the
// graph, decides when to stop.
func buildGraph(rt *Runtime, maxIterations int) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("formscout-detect")
	cfg.Observer = "noop"
	cfg.MaxIterations = max(cfg.MaxIterations, nodeBudget(maxIterations))

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	for _, step := range Steps {
		if step.Terminal() {
			continue
		}
		if err := graph.AddNode(string(step), stepNode(rt, step, stepFuncs[step])); err != nil {
			return nil, err
		}
	}

	if err := graph.AddNode(doneNode, DoneNode(rt)); err != nil {
		return nil, err
	}

	for _, from := range Steps {
		if from.Terminal() {
			continue
		}

		added := make(map[string]bool)
		for _, event := range Events {
			to := nodeFor(Transition(from, event))
			if added[to] {
				continue
			}
			added[to] = true

			if err := graph.AddEdge(string(from), to, routesTo(to)); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.SetEntryPoint(string(StepExtract)); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(doneNode); err != nil {
		return nil, err
	}

	return graph, nil
}

// nodeBudget is the most node executions a run with the given iteration
// limit can take: extract and estimate, one highlight/capture/validate/correct
// cycle per iteration, then finalize and done.
func nodeBudget(maxIterations int) int {
	const perIteration, fixed = 4, 8
	if maxIterations > (math.MaxInt-fixed)/perIteration {
		return math.MaxInt
	}
	return perIteration*maxIterations + fixed
}

func nodeFor(step Step) string {
	if step.Terminal() {
		return doneNode
	}
	return string(step)
}

func routesTo(node string) func(state.State) bool {
	return func(s state.State) bool {
		snap, err := snapshot(s)
		return err == nil && nodeFor(snap.Step) == node
	}
}
