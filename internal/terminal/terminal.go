package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/catalog"
	"github.com/fjod/go_cart/pos-terminal/internal/checkout"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"github.com/fjod/go_cart/pos-terminal/internal/guard"
	"github.com/fjod/go_cart/pos-terminal/internal/hold"
	"github.com/fjod/go_cart/pos-terminal/internal/printer"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.uber.org/zap"
)

type Catalog interface {
	Select(ctx context.Context, productID, variationID, unitID string) (*catalog.Selection, error)
}

// Backend is the subset of the commerce backend the terminal submits to.
type Backend interface {
	checkout.SaleSubmitter
	checkout.VoidSubmitter
}

type Deps struct {
	Catalog      Catalog
	Holds        hold.Repository
	Backend      Backend
	Printer      printer.Printer
	Notices      *events.NoticeLog
	Completions  *events.Broker[domain.CompletionEvent]
	Voids        *events.Broker[domain.VoidEvent]
	SaleType     domain.SaleType
	Session      SessionInfo
	PrintTimeout time.Duration
	Log          *zap.Logger
}

// Terminal is the single operator-facing surface over one live cart.
type Terminal struct {
	store    *cart.Store
	session  *Session
	catalog  Catalog
	holds    hold.Repository
	modes    *guard.ModeSwitch
	resume   *guard.HoldReplace
	checkout *checkout.Orchestrator
	voider   *checkout.Voider
	notices  *events.NoticeLog
	log      *zap.Logger
}

func New(deps Deps) *Terminal {
	log := logger.OrNop(deps.Log)
	if deps.Notices == nil {
		deps.Notices = events.NewNoticeLog(0)
	}
	if deps.Completions == nil {
		deps.Completions = events.NewBroker[domain.CompletionEvent](events.DefaultBuffer)
	}
	if deps.Voids == nil {
		deps.Voids = events.NewBroker[domain.VoidEvent](events.DefaultBuffer)
	}

	store := cart.NewStore(deps.SaleType)
	session := NewSession(deps.Session.OutletID, deps.Session.ShiftID)
	voider := checkout.NewVoider(store, session, deps.Backend, deps.Voids, deps.Notices, log.Named("void"))

	return &Terminal{
		store:   store,
		session: session,
		catalog: deps.Catalog,
		holds:   deps.Holds,
		modes:   guard.NewModeSwitch(store, voider, log.Named("mode")),
		resume:  guard.NewHoldReplace(store, deps.Holds, deps.Notices, log.Named("resume")),
		checkout: checkout.NewOrchestrator(checkout.Options{
			Cart:         store,
			Session:      session,
			Sales:        deps.Backend,
			Completions:  deps.Completions,
			Printer:      deps.Printer,
			Notices:      deps.Notices,
			PrintTimeout: deps.PrintTimeout,
			Log:          log.Named("checkout"),
		}),
		voider:  voider,
		notices: deps.Notices,
		log:     log,
	}
}

func (t *Terminal) Cart() cart.Snapshot {
	return t.store.Snapshot()
}

func (t *Terminal) SubscribeCart() (<-chan cart.Snapshot, func()) {
	return t.store.Subscribe()
}

type AddItem struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	UnitID      string `json:"unit_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

// AddItem looks the product up and appends it as a new line priced for the current mode.
func (t *Terminal) AddItem(ctx context.Context, req AddItem) (domain.CartLine, error) {
	sel, err := t.catalog.Select(ctx, req.ProductID, req.VariationID, req.UnitID)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("product lookup failed: %w", err)
	}
	return t.store.AddLine(sel.Product, sel.Variation, sel.Unit, req.Quantity)
}

func (t *Terminal) UpdateLine(id string, patch cart.LinePatch) error {
	return t.store.UpdateLine(id, patch)
}

func (t *Terminal) RemoveLine(id string) error {
	return t.store.RemoveLine(id)
}

func (t *Terminal) ClearCart() error {
	return t.store.Clear()
}

func (t *Terminal) SetDiscount(d domain.Discount) error {
	return t.store.SetDiscount(d)
}

func (t *Terminal) ClearDiscount() error {
	return t.store.ClearDiscount()
}

func (t *Terminal) SetCustomer(c domain.Customer) error {
	return t.store.SetCustomer(c)
}

func (t *Terminal) ClearCustomer() error {
	return t.store.ClearCustomer()
}

func (t *Terminal) Session() SessionInfo {
	return t.session.Info()
}

func (t *Terminal) SetSession(info SessionInfo) {
	t.session.Set(info)
	t.log.Info("session changed", zap.String("outlet_id", info.OutletID), zap.String("shift_id", info.ShiftID))
}

func (t *Terminal) Notices(after uint64) []events.Notice {
	return t.notices.Since(after)
}
