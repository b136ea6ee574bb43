package booking

import (
	"context"
	"errors"
	"time"

	"github.com/dvornik/appointment-booking/internal/payment"
)

// RetryPolicy bounds how the orchestrator retries transient gateway
// failures: exponential backoff starting at BaseDelay, doubling up to
// MaxDelay, for at most MaxAttempts attempts.  Only payment.ErrUnavailable
// is retried; every other error is permanent and returned immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the reconnect behavior used elsewhere in the
// service: quick first retry, capped doubling, a handful of attempts
// before the failure is surfaced as fatal.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

// Do runs op, retrying transient failures per the policy.  The last error
// is returned once attempts are exhausted; it still wraps
// payment.ErrUnavailable so callers can classify it.  Context cancellation
// aborts the backoff sleep.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, payment.ErrUnavailable) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
