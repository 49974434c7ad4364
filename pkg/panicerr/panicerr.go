// Package panicerr converts panics in background workers into errors.
package panicerr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
)

// Worker is a background job that runs until ctx is done or it fails.
type Worker func(ctx context.Context) error

// Guard runs w and returns a panic inside it as an error prefixed by name.
// The panic value and stack are logged before returning.
func Guard(name string, w Worker) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = w(ctx)
		})
		if r := catcher.Recovered(); r != nil {
			slog.ErrorContext(ctx, "worker panicked", "worker", name, "panic", r.Value, "stack", string(r.Stack))
			return fmt.Errorf("%s: %w", name, r.AsError())
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}

// Loop adapts a Start(ctx) style job that only returns once ctx is done.
func Loop(start func(ctx context.Context)) Worker {
	return func(ctx context.Context) error {
		start(ctx)
		return nil
	}
}
