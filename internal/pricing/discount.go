package pricing

import (
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount returns the discount amount. It is not clamped to the subtotal.
func ComputeDiscount(subtotal decimal.Decimal, discount *domain.Discount) decimal.Decimal {
	if discount == nil {
		return decimal.Zero
	}
	switch discount.Kind {
	case domain.DiscountPercentage:
		return subtotal.Mul(discount.Value).Div(hundred)
	case domain.DiscountAmount:
		return discount.Value
	default:
		return decimal.Zero
	}
}

type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotals is the unrounded display form. Total may go negative.
func ComputeTotals(subtotal decimal.Decimal, discount *domain.Discount) Totals {
	amount := ComputeDiscount(subtotal, discount)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: amount,
		Tax:            decimal.Zero,
		Total:          subtotal.Sub(amount),
	}
}

// RoundedTotals is the transmission form: subtotal and discount are rounded independently
// and total is derived from the rounded values.
func RoundedTotals(subtotal decimal.Decimal, discount *domain.Discount) Totals {
	sub := subtotal.Round(2)
	amount := ComputeDiscount(subtotal, discount).Round(2)
	tax := decimal.Zero
	return Totals{
		Subtotal:       sub,
		DiscountAmount: amount,
		Tax:            tax,
		Total:          sub.Sub(amount).Add(tax).Round(2),
	}
}
