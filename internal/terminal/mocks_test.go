package terminal

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/catalog"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

// MockCatalog implements Catalog over a fixed product map
type MockCatalog struct {
	products map[string]domain.Product
}

func newMockCatalog() *MockCatalog {
	return &MockCatalog{products: make(map[string]domain.Product)}
}

func (m *MockCatalog) Select(_ context.Context, productID, variationID, unitID string) (*catalog.Selection, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", backend.ErrNotFound, productID)
	}
	sel := &catalog.Selection{Product: p}
	var err error
	if sel.Variation, err = catalog.FindVariation(&sel.Product, variationID); err != nil {
		return nil, err
	}
	if sel.Unit, err = catalog.FindUnit(&sel.Product, unitID); err != nil {
		return nil, err
	}
	return sel, nil
}

// MockBackend implements Backend
type MockBackend struct {
	mu        sync.Mutex
	SaleErr   error
	VoidErr   error
	Sales     []domain.TransactionIntent
	Voids     []domain.VoidIntent
	receiptNo int
}

func (m *MockBackend) CreateSale(_ context.Context, intent domain.TransactionIntent) (*domain.SaleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaleErr != nil {
		return nil, m.SaleErr
	}
	m.Sales = append(m.Sales, intent)
	m.receiptNo++
	return &domain.SaleRecord{
		ID:            fmt.Sprintf("sale-%d", m.receiptNo),
		ReceiptNumber: fmt.Sprintf("R-%04d", m.receiptNo),
		OutletID:      intent.OutletID,
		ShiftID:       intent.ShiftID,
		Items:         intent.Items,
		Subtotal:      intent.Subtotal,
		Discount:      intent.Discount,
		Total:         intent.Total,
		PaymentMethod: intent.PaymentMethod,
		Status:        "completed",
	}, nil
}

func (m *MockBackend) GetSale(_ context.Context, id string) (*domain.SaleRecord, error) {
	return nil, fmt.Errorf("%w: sale %s", backend.ErrNotFound, id)
}

func (m *MockBackend) CreateVoid(_ context.Context, intent domain.VoidIntent) (*domain.VoidRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.VoidErr != nil {
		return nil, m.VoidErr
	}
	m.Voids = append(m.Voids, intent)
	return &domain.VoidRecord{
		ID:       fmt.Sprintf("void-%d", len(m.Voids)),
		Reason:   intent.Reason,
		Total:    intent.Total,
		OutletID: intent.OutletID,
	}, nil
}

func (m *MockBackend) voidCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Voids)
}

func (m *MockBackend) saleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sales)
}

type nopPrinter struct{}

func (nopPrinter) Print(context.Context, domain.SaleRecord, string) error { return nil }
