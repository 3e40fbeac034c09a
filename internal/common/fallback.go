package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoStrategies is returned when Fallback is called without strategies.
var ErrNoStrategies = errors.New("no fallback strategies provided")

// Strategy is one way of performing an operation.
type Strategy struct {
	Run  func(ctx context.Context) error
	Name string
}

// FallbackResult reports which strategy succeeded and every failure on the way.
type FallbackResult struct {
	Err      error
	Strategy string
	Attempts []StrategyAttempt
}

// StrategyAttempt records a single failed strategy.
type StrategyAttempt struct {
	Err  error
	Name string
}

// Succeeded reports whether any strategy completed.
func (r FallbackResult) Succeeded() bool {
	return r.Err == nil
}

// Fallback runs strategies in order and stops at the first success.
// When every strategy fails the returned Err joins all failures.
func Fallback(ctx context.Context, strategies ...Strategy) FallbackResult {
	if len(strategies) == 0 {
		return FallbackResult{Err: ErrNoStrategies}
	}

	var result FallbackResult
	errs := make([]error, 0, len(strategies))

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		err := s.Run(ctx)
		if err == nil {
			result.Strategy = s.Name
			return result
		}

		slog.Debug("fallback strategy failed", "strategy", s.Name, "error", err)
		result.Attempts = append(result.Attempts, StrategyAttempt{Name: s.Name, Err: err})
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}

	result.Err = errors.Join(errs...)
	return result
}
