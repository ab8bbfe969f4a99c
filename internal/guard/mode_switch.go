package guard

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.uber.org/zap"
)

// ModeCart is the part of the cart store the mode switch touches.
type ModeCart interface {
	Empty() bool
	SaleType() domain.SaleType
	SetSaleType(domain.SaleType) error
}

// Voider voids the cart and applies the new sale type in the same step that empties it.
type Voider interface {
	VoidAndSwitch(ctx context.Context, mode domain.SaleType) (*domain.VoidRecord, error)
}

// ModeSwitch changes the pricing mode. A non-empty cart is voided first, after confirmation.
type ModeSwitch struct {
	guard  *Guard[domain.SaleType]
	cart   ModeCart
	voider Voider
	log    *zap.Logger
}

func NewModeSwitch(cart ModeCart, voider Voider, log *zap.Logger) *ModeSwitch {
	m := &ModeSwitch{
		cart:   cart,
		voider: voider,
		log:    logger.OrNop(log),
	}
	m.guard = New(func() bool { return !cart.Empty() }, m.apply)
	return m
}

func (m *ModeSwitch) Request(ctx context.Context, mode domain.SaleType) (Result, error) {
	if !mode.Valid() {
		return "", domain.ErrInvalidSaleType
	}
	if m.cart.SaleType() == mode {
		if _, pending := m.guard.Pending(); pending {
			_, _ = m.guard.Cancel()
		}
		return ResultUnchanged, nil
	}
	return m.guard.Request(ctx, mode)
}

func (m *ModeSwitch) Confirm(ctx context.Context) (domain.SaleType, error) {
	return m.guard.Confirm(ctx)
}

func (m *ModeSwitch) Cancel() (domain.SaleType, error) {
	return m.guard.Cancel()
}

func (m *ModeSwitch) Pending() (domain.SaleType, bool) {
	return m.guard.Pending()
}

func (m *ModeSwitch) apply(ctx context.Context, mode domain.SaleType) error {
	if m.cart.Empty() {
		if err := m.cart.SetSaleType(mode); err != nil {
			return fmt.Errorf("set sale type failed: %w", err)
		}
		return nil
	}

	record, err := m.voider.VoidAndSwitch(ctx, mode)
	if err != nil {
		return fmt.Errorf("void before mode switch failed: %w", err)
	}
	if record != nil {
		m.log.Info("cart voided for mode switch",
			zap.String("void_id", record.ID),
			zap.String("mode", mode.String()))
	}
	return nil
}
