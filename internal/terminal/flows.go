package terminal

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/pos-terminal/internal/checkout"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/guard"
	"go.uber.org/zap"
)

func (t *Terminal) RequestMode(ctx context.Context, mode domain.SaleType) (guard.Result, error) {
	return t.modes.Request(ctx, mode)
}

func (t *Terminal) ConfirmMode(ctx context.Context) (domain.SaleType, error) {
	return t.modes.Confirm(ctx)
}

func (t *Terminal) CancelMode() (domain.SaleType, error) {
	return t.modes.Cancel()
}

func (t *Terminal) PendingMode() (domain.SaleType, bool) {
	return t.modes.Pending()
}

func (t *Terminal) VoidCart(ctx context.Context) (*domain.VoidRecord, error) {
	return t.voider.VoidCart(ctx)
}

func (t *Terminal) Checkout(ctx context.Context, payments checkout.PaymentCapturer) (*domain.SaleRecord, error) {
	return t.checkout.Checkout(ctx, payments)
}

// HoldCart parks the current lines under a new hold and empties the live cart.
// The cart is left alone when the write fails.
func (t *Terminal) HoldCart(ctx context.Context, tableRef string) (string, error) {
	freeze, err := t.store.Freeze()
	if err != nil {
		return "", err
	}

	id, err := t.holds.Hold(ctx, freeze.Snapshot().Lines, tableRef)
	if err != nil {
		freeze.Release()
		return "", fmt.Errorf("hold cart failed: %w", err)
	}
	freeze.ClearAndRelease()

	t.log.Info("cart held", zap.String("hold_id", id), zap.String("table_ref", tableRef))
	return id, nil
}

func (t *Terminal) ListHolds(ctx context.Context) ([]domain.HeldTransaction, error) {
	return t.holds.List(ctx)
}

func (t *Terminal) GetHold(ctx context.Context, id string) (*domain.HeldTransaction, error) {
	held, err := t.holds.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	if held == nil {
		return nil, guard.ErrHoldNotFound
	}
	return held, nil
}

func (t *Terminal) DeleteHold(ctx context.Context, id string) error {
	return t.holds.Delete(ctx, id)
}

func (t *Terminal) RequestResume(ctx context.Context, holdID string) (guard.Result, error) {
	return t.resume.Request(ctx, holdID)
}

func (t *Terminal) ConfirmResume(ctx context.Context) (string, error) {
	return t.resume.Confirm(ctx)
}

func (t *Terminal) CancelResume() (string, error) {
	return t.resume.Cancel()
}

func (t *Terminal) PendingResume() (string, bool) {
	return t.resume.Pending()
}
