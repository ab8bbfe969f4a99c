package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_AppliesImmediatelyWhenNoConfirmNeeded(t *testing.T) {
	var applied []int
	g := New(func() bool { return false }, func(_ context.Context, v int) error {
		applied = append(applied, v)
		return nil
	})

	res, err := g.Request(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, res)
	assert.Equal(t, []int{7}, applied)
	assert.Equal(t, StateIdle, g.current())
}

func TestGuard_PendingThenConfirm(t *testing.T) {
	var applied []int
	g := New(func() bool { return true }, func(_ context.Context, v int) error {
		applied = append(applied, v)
		return nil
	})

	res, err := g.Request(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, ResultPending, res)
	assert.Empty(t, applied)

	pending, ok := g.Pending()
	assert.True(t, ok)
	assert.Equal(t, 3, pending)

	got, err := g.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, []int{3}, applied)
	assert.Equal(t, StateIdle, g.current())
}

func TestGuard_CancelDiscards(t *testing.T) {
	calls := 0
	g := New(func() bool { return true }, func(context.Context, string) error {
		calls++
		return nil
	})

	_, _ = g.Request(context.Background(), "x")
	got, err := g.Cancel()
	require.NoError(t, err)
	assert.Equal(t, "x", got)
	assert.Equal(t, 0, calls)

	_, err = g.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNothingPending)
	_, err = g.Cancel()
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestGuard_FailedConfirmStaysPending(t *testing.T) {
	fail := true
	g := New(func() bool { return true }, func(context.Context, string) error {
		if fail {
			return errors.New("backend down")
		}
		return nil
	})
	_, _ = g.Request(context.Background(), "target")

	_, err := g.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatePending, g.current())

	fail = false
	_, err = g.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateIdle, g.current())
}

func TestModeSwitch_EmptyCartAppliesImmediately(t *testing.T) {
	cart := &MockCart{Mode: domain.SaleTypeRetail}
	voider := &MockVoider{Cart: cart}
	m := NewModeSwitch(cart, voider, nil)

	res, err := m.Request(context.Background(), domain.SaleTypeWholesale)
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, res)
	assert.Equal(t, domain.SaleTypeWholesale, cart.Mode)
	assert.Equal(t, 0, voider.Calls)
}

func TestModeSwitch_SameModeIsUnchanged(t *testing.T) {
	cart := &MockCart{Mode: domain.SaleTypeRetail, Lines: []domain.CartLine{line("p1")}}
	m := NewModeSwitch(cart, &MockVoider{Cart: cart}, nil)

	res, err := m.Request(context.Background(), domain.SaleTypeRetail)
	require.NoError(t, err)
	assert.Equal(t, ResultUnchanged, res)

	_, err = m.Request(context.Background(), "vip")
	assert.ErrorIs(t, err, domain.ErrInvalidSaleType)
}

func TestModeSwitch_DeclineLeavesCartAndMode(t *testing.T) {
	cart := &MockCart{Mode: domain.SaleTypeRetail, Lines: []domain.CartLine{line("p1"), line("p2")}}
	voider := &MockVoider{Cart: cart}
	m := NewModeSwitch(cart, voider, nil)

	res, err := m.Request(context.Background(), domain.SaleTypeWholesale)
	require.NoError(t, err)
	assert.Equal(t, ResultPending, res)

	_, err = m.Cancel()
	require.NoError(t, err)

	assert.Equal(t, domain.SaleTypeRetail, cart.Mode)
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, 0, voider.Calls)
}

func TestModeSwitch_ConfirmVoidsExactlyOnce(t *testing.T) {
	cart := &MockCart{Mode: domain.SaleTypeRetail, Lines: []domain.CartLine{line("p1")}}
	voider := &MockVoider{Cart: cart}
	m := NewModeSwitch(cart, voider, nil)

	_, _ = m.Request(context.Background(), domain.SaleTypeWholesale)
	mode, err := m.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SaleTypeWholesale, mode)
	assert.Equal(t, 1, voider.Calls)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, domain.SaleTypeWholesale, cart.Mode)
}

func TestModeSwitch_VoidFailureKeepsEverything(t *testing.T) {
	cart := &MockCart{Mode: domain.SaleTypeRetail, Lines: []domain.CartLine{line("p1")}}
	voider := &MockVoider{Cart: cart, Err: errors.New("backend down")}
	m := NewModeSwitch(cart, voider, nil)

	_, _ = m.Request(context.Background(), domain.SaleTypeWholesale)
	_, err := m.Confirm(context.Background())
	require.Error(t, err)

	assert.Equal(t, domain.SaleTypeRetail, cart.Mode)
	assert.Len(t, cart.Lines, 1)
	pending, ok := m.Pending()
	assert.True(t, ok)
	assert.Equal(t, domain.SaleTypeWholesale, pending)
}

func TestHoldReplace_EmptyCartLoadsImmediately(t *testing.T) {
	cart := &MockCart{}
	holds := &MockHolds{Held: map[string]*domain.HeldTransaction{
		"h1": {ID: "h1", Lines: []domain.CartLine{line("p1"), line("p2")}},
	}}
	notices := &MockNotifier{}
	h := NewHoldReplace(cart, holds, notices, nil)

	res, err := h.Request(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, res)
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, []string{"h1"}, holds.Deleted)
	assert.Equal(t, []events.NoticeKind{events.NoticeHoldBrowserClosed}, notices.Kinds)
}

func TestHoldReplace_NonEmptyCartNeedsConfirmation(t *testing.T) {
	cart := &MockCart{Lines: []domain.CartLine{line("live")}}
	holds := &MockHolds{Held: map[string]*domain.HeldTransaction{
		"h1": {ID: "h1", Lines: []domain.CartLine{line("held")}},
	}}
	h := NewHoldReplace(cart, holds, &MockNotifier{}, nil)

	res, err := h.Request(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, ResultPending, res)
	assert.Equal(t, "live", cart.Lines[0].ProductID)

	id, err := h.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "h1", id)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "held", cart.Lines[0].ProductID)
}

func TestHoldReplace_CancelDoesNotMutate(t *testing.T) {
	cart := &MockCart{Lines: []domain.CartLine{line("live")}}
	holds := &MockHolds{Held: map[string]*domain.HeldTransaction{"h1": {ID: "h1"}}}
	notices := &MockNotifier{}
	h := NewHoldReplace(cart, holds, notices, nil)

	_, _ = h.Request(context.Background(), "h1")
	_, err := h.Cancel()
	require.NoError(t, err)

	assert.Equal(t, 0, cart.ReplaceCall)
	assert.Empty(t, holds.Deleted)
	assert.Empty(t, notices.Kinds)
}

func TestHoldReplace_UnknownHold(t *testing.T) {
	h := NewHoldReplace(&MockCart{}, &MockHolds{Held: map[string]*domain.HeldTransaction{}}, &MockNotifier{}, nil)

	_, err := h.Request(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestHoldReplace_DeleteFailureStillRestores(t *testing.T) {
	cart := &MockCart{}
	holds := &MockHolds{
		Held:      map[string]*domain.HeldTransaction{"h1": {ID: "h1", Lines: []domain.CartLine{line("p1")}}},
		DeleteErr: errors.New("redis down"),
	}
	h := NewHoldReplace(cart, holds, &MockNotifier{}, nil)

	res, err := h.Request(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, res)
	assert.Len(t, cart.Lines, 1)
}
