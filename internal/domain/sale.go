package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is a currency amount rounded to cents that encodes as a two-decimal JSON number.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

func MoneyPtr(d *decimal.Decimal) *Money {
	if d == nil {
		return nil
	}
	m := NewMoney(*d)
	return &m
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

type IntentLine struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	UnitID      string `json:"unit_id,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
	Notes       string `json:"notes,omitempty"`
}

// TransactionIntent is the create-sale request built from the live cart at checkout time.
type TransactionIntent struct {
	OutletID       string       `json:"outlet_id"`
	ShiftID        string       `json:"shift_id"`
	CustomerID     string       `json:"customer_id,omitempty"`
	SaleType       SaleType     `json:"sale_type"`
	Items          []IntentLine `json:"items"`
	Subtotal       Money        `json:"subtotal"`
	Tax            Money        `json:"tax"`
	Discount       Money        `json:"discount"`
	DiscountKind   DiscountKind `json:"discount_kind,omitempty"`
	DiscountReason string       `json:"discount_reason,omitempty"`
	Total          Money        `json:"total"`
	PaymentMethod  string       `json:"payment_method,omitempty"`
	AmountPaid     *Money       `json:"amount_paid,omitempty"`
	Change         *Money       `json:"change,omitempty"`
	Notes          string       `json:"notes,omitempty"`
}

// VoidIntent carries the same items and totals as a sale plus the audit reason.
type VoidIntent struct {
	TransactionIntent
	Reason string `json:"reason"`
}

type SaleRecord struct {
	ID            string       `json:"id"`
	ReceiptNumber string       `json:"receipt_number"`
	OutletID      string       `json:"outlet_id"`
	ShiftID       string       `json:"shift_id"`
	CustomerID    string       `json:"customer_id,omitempty"`
	Items         []IntentLine `json:"items"`
	Subtotal      Money        `json:"subtotal"`
	Discount      Money        `json:"discount"`
	Tax           Money        `json:"tax"`
	Total         Money        `json:"total"`
	PaymentMethod string       `json:"payment_method"`
	AmountPaid    *Money       `json:"amount_paid,omitempty"`
	Change        *Money       `json:"change,omitempty"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

type VoidRecord struct {
	ID            string    `json:"id"`
	ReceiptNumber string    `json:"receipt_number"`
	Reason        string    `json:"reason"`
	Total         Money     `json:"total"`
	OutletID      string    `json:"outlet_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Payment is what the payment-capture collaborator hands back on confirmation.
type Payment struct {
	Method     string
	AmountPaid *decimal.Decimal
	Change     *decimal.Decimal
}

type CompletionEvent struct {
	TransactionID string     `json:"transaction_id"`
	ReceiptNumber string     `json:"receipt_number"`
	OutletID      string     `json:"outlet_id"`
	ShiftID       string     `json:"shift_id"`
	Record        SaleRecord `json:"record"`
}

type VoidEvent struct {
	VoidID        string     `json:"void_id"`
	ReceiptNumber string     `json:"receipt_number"`
	OutletID      string     `json:"outlet_id"`
	ShiftID       string     `json:"shift_id"`
	Record        VoidRecord `json:"record"`
}
