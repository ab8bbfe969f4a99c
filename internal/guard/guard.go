package guard

import (
	"context"
	"errors"
	"sync"
)

var ErrNothingPending = errors.New("no action awaiting confirmation")

type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Result tells the caller what a request did.
type Result string

const (
	ResultApplied   Result = "applied"
	ResultPending   Result = "pending_confirmation"
	ResultUnchanged Result = "unchanged"
)

// Guard gates a destructive action behind an explicit confirmation.
// When needsConfirm reports false the action runs straight away.
// A failed confirmation keeps the request pending so it can be retried or cancelled.
type Guard[T any] struct {
	mu           sync.Mutex
	state        State
	pending      T
	needsConfirm func() bool
	action       func(ctx context.Context, target T) error
}

func New[T any](needsConfirm func() bool, action func(ctx context.Context, target T) error) *Guard[T] {
	return &Guard[T]{
		state:        StateIdle,
		needsConfirm: needsConfirm,
		action:       action,
	}
}

// Request runs the action now or parks target until Confirm or Cancel.
// A new request replaces whatever was pending.
func (g *Guard[T]) Request(ctx context.Context, target T) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.needsConfirm() {
		if err := g.action(ctx, target); err != nil {
			return "", err
		}
		g.resetLocked()
		return ResultApplied, nil
	}

	g.state = StatePending
	g.pending = target
	return ResultPending, nil
}

func (g *Guard[T]) Confirm(ctx context.Context) (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var zero T
	if g.state != StatePending {
		return zero, ErrNothingPending
	}
	target := g.pending
	if err := g.action(ctx, target); err != nil {
		return zero, err
	}
	g.resetLocked()
	return target, nil
}

// Cancel drops the pending request without running the action.
func (g *Guard[T]) Cancel() (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var zero T
	if g.state != StatePending {
		return zero, ErrNothingPending
	}
	target := g.pending
	g.resetLocked()
	return target, nil
}

func (g *Guard[T]) Pending() (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending, g.state == StatePending
}

func (g *Guard[T]) current() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard[T]) resetLocked() {
	var zero T
	g.state = StateIdle
	g.pending = zero
}
