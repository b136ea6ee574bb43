package payment

import (
	"context"
	"errors"
	"testing"
)

func authorize(t *testing.T, g *MemoryGateway) Authorization {
	t.Helper()
	a, err := g.Authorize(context.Background(), 5000, "usd")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	return a
}

func TestLifecycle(t *testing.T) {
	g := NewMemoryGateway()
	a := authorize(t, g)

	if a.Status != StatusCreated {
		t.Fatalf("new authorization status = %s, want %s", a.Status, StatusCreated)
	}
	if a.ClientToken == "" {
		t.Fatal("new authorization has no client token")
	}

	st, err := g.Confirm(context.Background(), a.ID)
	if err != nil || st != StatusAuthorized {
		t.Fatalf("Confirm = (%s, %v), want (%s, nil)", st, err, StatusAuthorized)
	}
	if err := g.Capture(context.Background(), a.ID); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	st, err = g.Status(context.Background(), a.ID)
	if err != nil || st != StatusCaptured {
		t.Fatalf("Status after capture = (%s, %v), want (%s, nil)", st, err, StatusCaptured)
	}
	if n := g.Movements(a.ID); n != 1 {
		t.Fatalf("fund movements = %d, want 1", n)
	}
}

func TestCaptureBeforeConfirm(t *testing.T) {
	g := NewMemoryGateway()
	a := authorize(t, g)
	if err := g.Capture(context.Background(), a.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("Capture on CREATED = %v, want ErrNotAuthorized", err)
	}
}

func TestCaptureIdempotent(t *testing.T) {
	g := NewMemoryGateway()
	a := authorize(t, g)
	if _, err := g.Confirm(context.Background(), a.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := g.Capture(context.Background(), a.ID); err != nil {
			t.Fatalf("Capture #%d: %v", i+1, err)
		}
	}
	if n := g.Movements(a.ID); n != 1 {
		t.Fatalf("fund movements after repeated captures = %d, want 1", n)
	}
}

func TestVoidIdempotent(t *testing.T) {
	g := NewMemoryGateway()
	a := authorize(t, g)
	if err := g.Void(context.Background(), a.ID); err != nil {
		t.Fatalf("Void: %v", err)
	}
	if err := g.Void(context.Background(), a.ID); err != nil {
		t.Fatalf("repeat Void: %v", err)
	}
	st, err := g.Status(context.Background(), a.ID)
	if err != nil || st != StatusVoided {
		t.Fatalf("Status after void = (%s, %v), want (%s, nil)", st, err, StatusVoided)
	}
}

func TestTerminalStatesExcludeEachOther(t *testing.T) {
	g := NewMemoryGateway()

	captured := authorize(t, g)
	if _, err := g.Confirm(context.Background(), captured.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := g.Capture(context.Background(), captured.ID); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := g.Void(context.Background(), captured.ID); !errors.Is(err, ErrTerminalConflict) {
		t.Fatalf("Void after capture = %v, want ErrTerminalConflict", err)
	}

	voided := authorize(t, g)
	if err := g.Void(context.Background(), voided.ID); err != nil {
		t.Fatalf("Void: %v", err)
	}
	if err := g.Capture(context.Background(), voided.ID); !errors.Is(err, ErrTerminalConflict) {
		t.Fatalf("Capture after void = %v, want ErrTerminalConflict", err)
	}
}

func TestUnknownAuthorization(t *testing.T) {
	g := NewMemoryGateway()
	if _, err := g.Status(context.Background(), "auth_999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Status of unknown id = %v, want ErrNotFound", err)
	}
	if err := g.Capture(context.Background(), "auth_999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Capture of unknown id = %v, want ErrNotFound", err)
	}
}
