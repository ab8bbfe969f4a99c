package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.uber.org/zap"
)

var ErrHoldNotFound = errors.New("held transaction not found")

type ReplaceCart interface {
	Empty() bool
	Replace(lines []domain.CartLine) error
}

type HoldSource interface {
	Retrieve(ctx context.Context, id string) (*domain.HeldTransaction, error)
	Delete(ctx context.Context, id string) error
}

type Notifier interface {
	Publish(kind events.NoticeKind, level events.NoticeLevel, message string) events.Notice
}

// HoldReplace restores a held transaction into the live cart, asking first if that would discard lines.
// A restored hold is consumed.
type HoldReplace struct {
	guard   *Guard[string]
	cart    ReplaceCart
	holds   HoldSource
	notices Notifier
	log     *zap.Logger
}

func NewHoldReplace(cart ReplaceCart, holds HoldSource, notices Notifier, log *zap.Logger) *HoldReplace {
	h := &HoldReplace{
		cart:    cart,
		holds:   holds,
		notices: notices,
		log:     logger.OrNop(log),
	}
	h.guard = New(func() bool { return !cart.Empty() }, h.apply)
	return h
}

func (h *HoldReplace) Request(ctx context.Context, holdID string) (Result, error) {
	held, err := h.holds.Retrieve(ctx, holdID)
	if err != nil {
		return "", fmt.Errorf("retrieve hold failed: %w", err)
	}
	if held == nil {
		return "", ErrHoldNotFound
	}
	return h.guard.Request(ctx, holdID)
}

func (h *HoldReplace) Confirm(ctx context.Context) (string, error) {
	return h.guard.Confirm(ctx)
}

func (h *HoldReplace) Cancel() (string, error) {
	return h.guard.Cancel()
}

func (h *HoldReplace) Pending() (string, bool) {
	return h.guard.Pending()
}

func (h *HoldReplace) apply(ctx context.Context, holdID string) error {
	held, err := h.holds.Retrieve(ctx, holdID)
	if err != nil {
		return fmt.Errorf("retrieve hold failed: %w", err)
	}
	if held == nil {
		return ErrHoldNotFound
	}

	if err := h.cart.Replace(held.Lines); err != nil {
		return err
	}

	if err := h.holds.Delete(ctx, holdID); err != nil {
		h.log.Warn("failed to delete restored hold", zap.String("hold_id", holdID), zap.Error(err))
	}
	h.notices.Publish(events.NoticeHoldBrowserClosed, events.LevelInfo,
		fmt.Sprintf("held transaction %s restored", holdID))
	return nil
}
