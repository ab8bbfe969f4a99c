package cart

import "github.com/fjod/go_cart/pos-terminal/internal/domain"

// Freeze locks the cart against edits while a checkout or void is talking to the backend.
// Exactly one of Release or ClearAndRelease takes effect; later calls are no-ops.
type Freeze struct {
	store    *Store
	snapshot Snapshot
}

// Freeze locks the cart and captures the state the caller will submit.
func (s *Store) Freeze() (*Freeze, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return nil, ErrCartFrozen
	}
	f := &Freeze{store: s}
	s.freeze = f
	f.snapshot = s.snapshotLocked()
	s.publishLocked()
	return f, nil
}

// Snapshot is the cart as it was when frozen.
func (f *Freeze) Snapshot() Snapshot {
	return f.snapshot
}

// Release unlocks the cart leaving its contents untouched.
func (f *Freeze) Release() {
	f.finish(false, "")
}

// ClearAndRelease empties lines, discount and customer and unlocks in one step.
func (f *Freeze) ClearAndRelease() {
	f.finish(true, "")
}

// ReleaseAs unlocks an empty cart and switches its sale type in the same step.
// A cart that still holds lines keeps its sale type.
func (f *Freeze) ReleaseAs(saleType domain.SaleType) {
	f.finish(false, saleType)
}

// ClearAndReleaseAs empties the cart, switches its sale type and unlocks in one step.
func (f *Freeze) ClearAndReleaseAs(saleType domain.SaleType) {
	f.finish(true, saleType)
}

func (f *Freeze) finish(clear bool, saleType domain.SaleType) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != f {
		return
	}
	s.freeze = nil
	if clear {
		s.clearLocked()
	}
	if saleType.Valid() && len(s.lines) == 0 {
		s.saleType = saleType
	}
	s.publishLocked()
}
