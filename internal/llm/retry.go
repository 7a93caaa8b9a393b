package llm

import (
	"context"
	"errors"
	"time"
)

// sleepCtx waits for d or until ctx is done (replaced in tests)
var sleepCtx = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retrying retries transient failures with exponential backoff starting at
// baseDelay. Permanent errors and context cancellation stop immediately.
type Retrying struct {
	next        Provider
	maxAttempts int
	baseDelay   time.Duration
}

// NewRetrying wraps a provider with a bounded retry policy
func NewRetrying(next Provider, maxAttempts int, baseDelay time.Duration) *Retrying {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Retrying{next: next, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// Name returns the wrapped provider's name
func (r *Retrying) Name() string { return r.next.Name() }

// IsAvailable delegates to the wrapped provider
func (r *Retrying) IsAvailable(ctx context.Context) bool { return r.next.IsAvailable(ctx) }

// Complete calls the wrapped provider until it succeeds or attempts run out
func (r *Retrying) Complete(ctx context.Context, req Request) (*Response, error) {
	var last error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}

		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return nil, err
		}
		last = err

		if attempt == r.maxAttempts-1 {
			break
		}
		if err := sleepCtx(ctx, r.baseDelay*time.Duration(1<<attempt)); err != nil {
			return nil, err
		}
	}
	return nil, last
}
