package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dvornik/appointment-booking/internal/payment"
)

func TestRetryExhaustsAttempts(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("provider down: %w", payment.ErrUnavailable)
	})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, payment.ErrUnavailable) {
		t.Fatalf("final error = %v, want wrapped ErrUnavailable", err)
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return payment.ErrUnavailable
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return payment.ErrTerminalConflict
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, payment.ErrTerminalConflict) {
		t.Fatalf("error = %v, want ErrTerminalConflict", err)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Do(ctx, func() error { return payment.ErrUnavailable })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	p := RetryPolicy{}
	calls := 0
	if err := p.Do(context.Background(), func() error { calls++; return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
