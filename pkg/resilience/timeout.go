package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/kotoba-dict/kotoba/pkg/errors"
)

// WithTimeout runs fn under a deadline. fn is never interrupted
// mid-computation; when the deadline passes first the caller gets
// ErrTimeout and whatever fn eventually produces is discarded. Used for
// per-sub-query budgets, where a late answer is excluded rather than
// cancelled.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- fn(timeoutCtx)
	}()
	select {
	case err := <-done:
		return err
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("%s: parent context cancelled: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s after %v: %w", name, timeout, apperrors.ErrTimeout)
	}
}
