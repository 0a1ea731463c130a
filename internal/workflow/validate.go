package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/formscout/internal/prompts"
	"github.com/JaimeStill/formscout/pkg/formatting"
)

// validateStep reviews each highlighted capture against the original with
// bounded concurrency. Verdicts keep capture order; the first is the
// representative and any NEEDS_REVISION makes the iteration need revision.
func validateStep(ctx context.Context, rt *Runtime, s State) (State, Event, error) {
	captures := s.HighlightedCapturePaths
	if len(captures) == 0 {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrValidateFailed, ErrNoCaptures)
	}

	prompt, err := ComposePrompt(ctx, rt.Prompts, prompts.StageValidate)
	if err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrValidateFailed, err)
	}

	verdicts := make([]Verdict, len(captures))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(captures)))

	for i, capture := range captures {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			content, err := rt.Reasoner.Reason(gctx, Request{
				Stage:  prompts.StageValidate,
				Prompt: prompt,
				Images: []string{s.OriginalCapturePath, capture},
			})
			if err != nil {
				return fmt.Errorf("capture %d: %w", i+1, err)
			}

			v, err := parseVerdict(content)
			if err != nil {
				return fmt.Errorf("capture %d: %w", i+1, err)
			}

			verdicts[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrValidateFailed, err)
	}

	a := artifactsFor(s)
	n := s.CurrentIteration

	if err := writeText(a.versioned(validationTextFile, n), describeVerdicts(captures, verdicts)); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrValidateFailed, err)
	}
	if err := writeJSON(a.versioned(structuredValidationFile, n), verdicts[0]); err != nil {
		return s, EventFailed, fmt.Errorf("%w: %w", ErrValidateFailed, err)
	}

	s.Verdict = &verdicts[0]
	s.AggregateStatus = Aggregate(verdicts)

	event := ValidateEvent(s.AggregateStatus, n, s.MaxIterations)
	if event == EventExhausted {
		rt.Logger.WarnContext(
			ctx, "iteration budget exhausted, finalizing unresolved proposal",
			"iteration", n,
			"max_iterations", s.MaxIterations,
			"issues", len(s.Verdict.Issues),
		)
	}

	return s, event, nil
}

func parseVerdict(content string) (Verdict, error) {
	v, err := formatting.Parse[Verdict](content)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if err := v.validate(); err != nil {
		return Verdict{}, err
	}
	return v, nil
}

func describeVerdicts(captures []string, verdicts []Verdict) string {
	var sb strings.Builder
	for i, v := range verdicts {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s\n\n", filepath.Base(captures[i]))
		sb.WriteString(v.String())
	}
	fmt.Fprintf(&sb, "\nOverall: %s\n", Aggregate(verdicts))
	return sb.String()
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}
