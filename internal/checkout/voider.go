package checkout

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.uber.org/zap"
)

// Voider records an abandoned cart on the backend and then empties it.
type Voider struct {
	cart    Cart
	session Session
	voids   VoidSubmitter
	events  Publisher[domain.VoidEvent]
	notices Notifier
	log     *zap.Logger
}

func NewVoider(cart Cart, session Session, voids VoidSubmitter, published Publisher[domain.VoidEvent], notices Notifier, log *zap.Logger) *Voider {
	return &Voider{
		cart:    cart,
		session: session,
		voids:   voids,
		events:  published,
		notices: notices,
		log:     logger.OrNop(log),
	}
}

// VoidCart submits a void for the current cart. An empty cart is a no-op returning nil, nil.
func (v *Voider) VoidCart(ctx context.Context) (*domain.VoidRecord, error) {
	if v.cart.Empty() {
		v.nothingToVoid()
		return nil, nil
	}
	return v.void(ctx, "")
}

// VoidAndSwitch voids the cart and changes its sale type in the step that empties it,
// so no edit can land between the two. An empty cart is switched without a void.
func (v *Voider) VoidAndSwitch(ctx context.Context, saleType domain.SaleType) (*domain.VoidRecord, error) {
	if !saleType.Valid() {
		return nil, domain.ErrInvalidSaleType
	}
	return v.void(ctx, saleType)
}

// void runs with the cart frozen. A valid switchTo is applied when the freeze ends.
func (v *Voider) void(ctx context.Context, switchTo domain.SaleType) (*domain.VoidRecord, error) {
	freeze, err := v.cart.Freeze()
	if err != nil {
		return nil, err
	}
	snap := freeze.Snapshot()
	if snap.Empty() {
		if switchTo.Valid() {
			freeze.ReleaseAs(switchTo)
			return nil, nil
		}
		freeze.Release()
		v.nothingToVoid()
		return nil, nil
	}

	outletID, shiftID := v.session.OutletID(), v.session.ShiftID()
	intent := domain.VoidIntent{
		TransactionIntent: buildIntent(snap, outletID, shiftID),
		Reason:            VoidReason,
	}

	record, err := v.voids.CreateVoid(context.WithoutCancel(ctx), intent)
	if err != nil {
		freeze.Release()
		v.log.Warn("create void failed", zap.String("outlet_id", outletID), zap.Error(err))
		return nil, fmt.Errorf("failed to submit void: %w", err)
	}

	if switchTo.Valid() {
		freeze.ClearAndReleaseAs(switchTo)
	} else {
		freeze.ClearAndRelease()
	}
	if v.events != nil {
		v.events.Publish(domain.VoidEvent{
			VoidID:        record.ID,
			ReceiptNumber: record.ReceiptNumber,
			OutletID:      outletID,
			ShiftID:       shiftID,
			Record:        *record,
		})
	}
	if v.notices != nil {
		v.notices.Publish(events.NoticeCartVoided, events.LevelInfo, "Cart voided")
	}

	logger.WithTrace(ctx, v.log).Info("cart voided",
		zap.String("void_id", record.ID),
		zap.String("total", intent.Total.StringFixed(2)))
	return record, nil
}

func (v *Voider) nothingToVoid() {
	if v.notices != nil {
		v.notices.Publish(events.NoticeNothingToVoid, events.LevelInfo, "Nothing to void")
	}
}
