package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	VariationID string          `json:"variation_id,omitempty"`
	UnitID      string          `json:"unit_id,omitempty"`
	DisplayName string          `json:"display_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	SaleType    SaleType        `json:"sale_type"`
	Notes       string          `json:"notes,omitempty"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CloneLines returns a copy that shares no backing array with lines.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountAmount     DiscountKind = "amount"
)

func (k DiscountKind) Valid() bool {
	return k == DiscountPercentage || k == DiscountAmount
}

func ParseDiscountKind(v string) (DiscountKind, error) {
	k := DiscountKind(strings.ToLower(strings.TrimSpace(v)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDiscountKind, v)
	}
	return k, nil
}

// Discount is the single transaction-level discount. Value is never checked against the subtotal.
type Discount struct {
	Kind   DiscountKind    `json:"kind"`
	Value  decimal.Decimal `json:"value"`
	Reason string          `json:"reason,omitempty"`
}

type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}
