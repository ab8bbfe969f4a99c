package guard

import (
	"context"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
)

// MockCart implements ModeCart and ReplaceCart
type MockCart struct {
	Lines       []domain.CartLine
	Mode        domain.SaleType
	SetModeErr  error
	ReplaceErr  error
	ReplaceCall int
}

func (m *MockCart) Empty() bool {
	return len(m.Lines) == 0
}

func (m *MockCart) SaleType() domain.SaleType {
	return m.Mode
}

func (m *MockCart) SetSaleType(mode domain.SaleType) error {
	if m.SetModeErr != nil {
		return m.SetModeErr
	}
	m.Mode = mode
	return nil
}

func (m *MockCart) Replace(lines []domain.CartLine) error {
	m.ReplaceCall++
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.Lines = append([]domain.CartLine(nil), lines...)
	return nil
}

// MockVoider clears the cart it is bound to on success
type MockVoider struct {
	Cart  *MockCart
	Err   error
	Calls int
}

func (m *MockVoider) VoidAndSwitch(_ context.Context, mode domain.SaleType) (*domain.VoidRecord, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	m.Cart.Lines = nil
	m.Cart.Mode = mode
	return &domain.VoidRecord{ID: "void-1", Reason: "Transaction voided before payment"}, nil
}

// MockHolds implements HoldSource
type MockHolds struct {
	Held        map[string]*domain.HeldTransaction
	RetrieveErr error
	DeleteErr   error
	Deleted     []string
}

func (m *MockHolds) Retrieve(_ context.Context, id string) (*domain.HeldTransaction, error) {
	if m.RetrieveErr != nil {
		return nil, m.RetrieveErr
	}
	return m.Held[id], nil
}

func (m *MockHolds) Delete(_ context.Context, id string) error {
	m.Deleted = append(m.Deleted, id)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Held, id)
	return nil
}

// MockNotifier records published notices
type MockNotifier struct {
	Kinds []events.NoticeKind
}

func (m *MockNotifier) Publish(kind events.NoticeKind, level events.NoticeLevel, message string) events.Notice {
	m.Kinds = append(m.Kinds, kind)
	return events.Notice{Kind: kind, Level: level, Message: message}
}

func line(productID string) domain.CartLine {
	return domain.CartLine{ID: "l-" + productID, ProductID: productID, Quantity: 1, SaleType: domain.SaleTypeRetail}
}
