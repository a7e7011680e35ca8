// Package fallback runs ordered alternative strategies until one of them produces
// a usable result.
package fallback

import (
	"context"
	"errors"
	"fmt"

	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/menu"
)

const (
	report_chain_step      = "chain.step"
	report_chain_candidate = "chain.candidate"
)

// ErrSkip is returned by a step or a discovery that does not apply to the request,
// skipping is not recorded as a failure.
var ErrSkip = errors.New("strategy does not apply")

// ErrRejected is returned by a validator for a candidate that was fetched fine but
// is not the one being looked for.
var ErrRejected = errors.New("candidate rejected")

type Step[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// First runs steps in order and returns the first successful result. When every
// step fails, the last failure is returned keeping its kind, an unclassified one
// becomes menu.ErrNotAvailable. When every step skipped, the error wraps ErrSkip.
func First[T any](ctx context.Context, tel telemetry.API, steps ...Step[T]) (T, error) {
	var zero T
	var lastErr error
	for _, step := range steps {
		result, err := step.Run(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrSkip) {
			tel.ReportDebug(report_chain_step, step.Name, "skipped")
			continue
		}
		tel.ReportDebug(report_chain_step, step.Name, err)
		lastErr = fmt.Errorf("%s: %w", step.Name, err)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no strategy applied: %w", ErrSkip)
	}
	if menu.Recoverable(lastErr) {
		return zero, fmt.Errorf("all strategies exhausted: %w", lastErr)
	}
	return zero, menu.NotAvailable("all strategies exhausted", lastErr)
}

// Strategy proposes candidates (usually urls) that are then validated.
type Strategy[C any] struct {
	Name     string
	Discover func(ctx context.Context) ([]C, error)
}

// Resolve asks each strategy for candidates in order and returns the result of the
// first candidate that validates. A rejected candidate is not an error, the next
// candidate or strategy is tried. Only when everything is exhausted is the last
// error surfaced.
func Resolve[C, T any](
	ctx context.Context,
	tel telemetry.API,
	strategies []Strategy[C],
	validate func(ctx context.Context, candidate C) (T, error),
) (T, error) {
	steps := make([]Step[T], len(strategies))
	for i, strategy := range strategies {
		steps[i] = Step[T]{
			Name: strategy.Name,
			Run: func(ctx context.Context) (T, error) {
				var zero T
				candidates, err := strategy.Discover(ctx)
				if err != nil {
					return zero, err
				}
				if len(candidates) == 0 {
					return zero, fmt.Errorf("no candidates")
				}

				var lastErr error
				for _, candidate := range candidates {
					result, err := validate(ctx, candidate)
					if err == nil {
						return result, nil
					}
					tel.ReportDebug(report_chain_candidate, strategy.Name, candidate, err)
					lastErr = err
				}
				return zero, lastErr
			},
		}
	}
	return First(ctx, tel, steps...)
}
