package checkout

import (
	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/pricing"
	"github.com/shopspring/decimal"
)

// buildIntent projects a frozen cart into the create-sale request. Every currency
// field is rounded to cents and the total is derived from the rounded parts.
func buildIntent(snap cart.Snapshot, outletID, shiftID string) domain.TransactionIntent {
	subtotal := decimal.Zero
	items := make([]domain.IntentLine, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		subtotal = subtotal.Add(line.LineTotal())
		items = append(items, domain.IntentLine{
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			UnitID:      line.UnitID,
			Quantity:    line.Quantity,
			UnitPrice:   domain.NewMoney(line.UnitPrice),
			Notes:       line.Notes,
		})
	}

	totals := pricing.RoundedTotals(subtotal, snap.Discount)
	intent := domain.TransactionIntent{
		OutletID: outletID,
		ShiftID:  shiftID,
		SaleType: snap.SaleType,
		Items:    items,
		Subtotal: domain.NewMoney(totals.Subtotal),
		Tax:      domain.NewMoney(totals.Tax),
		Discount: domain.NewMoney(totals.DiscountAmount),
		Total:    domain.NewMoney(totals.Total),
	}
	if snap.Discount != nil {
		intent.DiscountKind = snap.Discount.Kind
		intent.DiscountReason = snap.Discount.Reason
	}
	if snap.Customer != nil {
		intent.CustomerID = snap.Customer.ID
	}
	return intent
}

func applyPayment(intent *domain.TransactionIntent, payment *domain.Payment) {
	intent.PaymentMethod = payment.Method
	intent.AmountPaid = domain.MoneyPtr(payment.AmountPaid)
	intent.Change = domain.MoneyPtr(payment.Change)
}
