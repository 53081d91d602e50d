package retry

import (
	"context"
	"fmt"
	"time"
)

// ExternalServiceError reports an external collaborator whose bounded
// retries were exhausted.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Policy bounds calls to external services: a fixed attempt count with
// exponential backoff between attempts and a per-attempt timeout.
type Policy struct {
	Attempts int
	Backoff  time.Duration // delay before the second attempt, doubled each retry
	Timeout  time.Duration // per-attempt deadline, 0 disables
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is cancelled.
// The error from the last attempt is returned on exhaustion.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := p.Backoff

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("%d attempts exhausted: %w", attempts, lastErr)
}
