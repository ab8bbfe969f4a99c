package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentCapturer asks the operator how the total was paid.
// A nil payment with a nil error means the operator cancelled.
type PaymentCapturer interface {
	Capture(ctx context.Context, total decimal.Decimal) (*domain.Payment, error)
}

type PaymentFunc func(ctx context.Context, total decimal.Decimal) (*domain.Payment, error)

func (f PaymentFunc) Capture(ctx context.Context, total decimal.Decimal) (*domain.Payment, error) {
	return f(ctx, total)
}

// Tender is a payment the operator keyed in up front. An empty method cancels.
// When an amount is tendered the change due is derived from the total.
func Tender(method string, amountPaid *decimal.Decimal) PaymentCapturer {
	return PaymentFunc(func(_ context.Context, total decimal.Decimal) (*domain.Payment, error) {
		m := strings.TrimSpace(method)
		if m == "" {
			return nil, nil
		}
		payment := &domain.Payment{Method: m}
		if amountPaid == nil {
			return payment, nil
		}
		if amountPaid.LessThan(total) {
			return nil, fmt.Errorf("%w: tendered %s, total %s", ErrInsufficientTender, amountPaid.StringFixed(2), total.StringFixed(2))
		}
		paid := *amountPaid
		change := paid.Sub(total)
		payment.AmountPaid = &paid
		payment.Change = &change
		return payment, nil
	})
}
