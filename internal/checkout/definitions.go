package checkout

import (
	"context"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
)

// Cart is the part of the cart store a checkout or void needs.
type Cart interface {
	Empty() bool
	Freeze() (*cart.Freeze, error)
}

// Session reports the outlet and shift the terminal currently works under.
type Session interface {
	OutletID() string
	ShiftID() string
}

type SaleSubmitter interface {
	CreateSale(ctx context.Context, intent domain.TransactionIntent) (*domain.SaleRecord, error)
	GetSale(ctx context.Context, id string) (*domain.SaleRecord, error)
}

type VoidSubmitter interface {
	CreateVoid(ctx context.Context, intent domain.VoidIntent) (*domain.VoidRecord, error)
}

type Publisher[T any] interface {
	Publish(msg T) int
}

type Notifier interface {
	Publish(kind events.NoticeKind, level events.NoticeLevel, message string) events.Notice
}
