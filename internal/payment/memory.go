package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// MemoryGateway is an in-process Gateway used in development (when no
// provider key is configured) and in tests.  It keeps authorizations in a
// map and performs the confirmation step itself, since there is no client
// device to do it.  All state transitions follow the same rules as the
// real provider adapter: capture and void are idempotent and the two
// terminal states exclude each other.
type MemoryGateway struct {
	mu    sync.Mutex
	seq   uint64
	auths map[string]*memAuth

	// Glitch, when non-nil, runs before every operation and may return an
	// error to inject provider failures.  op is one of "authorize",
	// "confirm", "status", "capture", "void".  Tests use this to exercise
	// retry and rollback paths.
	Glitch func(op, id string) error
}

type memAuth struct {
	Authorization
	moves int // number of actual fund movements; must never exceed 1
}

// NewMemoryGateway returns an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{auths: make(map[string]*memAuth)}
}

func (g *MemoryGateway) glitch(op, id string) error {
	if g.Glitch != nil {
		return g.Glitch(op, id)
	}
	return nil
}

// Authorize creates a new CREATED authorization and returns its reference
// together with a random client confirmation token.
func (g *MemoryGateway) Authorize(ctx context.Context, amountCents int64, currency string) (Authorization, error) {
	if err := g.glitch("authorize", ""); err != nil {
		return Authorization{}, err
	}
	tok, err := randomToken(24)
	if err != nil {
		return Authorization{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	a := &memAuth{Authorization: Authorization{
		ID:          fmt.Sprintf("auth_%06d", g.seq),
		ClientToken: tok,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      StatusCreated,
	}}
	g.auths[a.ID] = a
	return a.Authorization, nil
}

// Confirm moves a CREATED authorization to AUTHORIZED, standing in for the
// confirmation the client device would normally perform against the real
// provider.  Confirming an already authorized (or terminal) authorization
// just reports the current status.
func (g *MemoryGateway) Confirm(ctx context.Context, id string) (string, error) {
	if err := g.glitch("confirm", id); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.auths[id]
	if !ok {
		return "", ErrNotFound
	}
	if a.Status == StatusCreated {
		a.Status = StatusAuthorized
	}
	return a.Status, nil
}

// Status returns the current status of an authorization.
func (g *MemoryGateway) Status(ctx context.Context, id string) (string, error) {
	if err := g.glitch("status", id); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.auths[id]
	if !ok {
		return "", ErrNotFound
	}
	return a.Status, nil
}

// Capture moves the held funds.  Repeat captures succeed without a second
// fund movement; capturing a voided authorization fails with
// ErrTerminalConflict and capturing an unconfirmed one with ErrNotAuthorized.
func (g *MemoryGateway) Capture(ctx context.Context, id string) error {
	if err := g.glitch("capture", id); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.auths[id]
	if !ok {
		return ErrNotFound
	}
	switch a.Status {
	case StatusCaptured:
		return nil
	case StatusVoided:
		return ErrTerminalConflict
	case StatusCreated:
		return ErrNotAuthorized
	}
	a.Status = StatusCaptured
	a.moves++
	return nil
}

// Void releases a hold.  Repeat voids succeed; voiding a captured
// authorization fails with ErrTerminalConflict.
func (g *MemoryGateway) Void(ctx context.Context, id string) error {
	if err := g.glitch("void", id); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.auths[id]
	if !ok {
		return ErrNotFound
	}
	switch a.Status {
	case StatusVoided:
		return nil
	case StatusCaptured:
		return ErrTerminalConflict
	}
	a.Status = StatusVoided
	return nil
}

// Movements returns how many times funds actually moved for the given
// authorization.  Used by reconciliation checks and tests; the value is 0
// or 1 for any correctly handled authorization.
func (g *MemoryGateway) Movements(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a, ok := g.auths[id]; ok {
		return a.moves
	}
	return 0
}

// randomToken returns n random bytes hex-encoded, used for client
// confirmation tokens.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
