package http

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/catalog"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/journal"
)

type CatalogMock struct {
	products map[string]domain.Product
}

func (c CatalogMock) Select(_ context.Context, productID, variationID, unitID string) (*catalog.Selection, error) {
	p, ok := c.products[productID]
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

type BackendMock struct {
	mu      sync.Mutex
	saleErr error
	voidErr error
	sales   int
	voids   int
}

func (b *BackendMock) CreateSale(_ context.Context, intent domain.TransactionIntent) (*domain.SaleRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saleErr != nil {
		return nil, b.saleErr
	}
	b.sales++
	return &domain.SaleRecord{
		ID:            fmt.Sprintf("sale-%d", b.sales),
		ReceiptNumber: fmt.Sprintf("R-%d", b.sales),
		OutletID:      intent.OutletID,
		ShiftID:       intent.ShiftID,
		Total:         intent.Total,
		PaymentMethod: intent.PaymentMethod,
		AmountPaid:    intent.AmountPaid,
		Change:        intent.Change,
	}, nil
}

func (b *BackendMock) GetSale(_ context.Context, id string) (*domain.SaleRecord, error) {
	return nil, backend.ErrUnavailable
}

func (b *BackendMock) CreateVoid(_ context.Context, intent domain.VoidIntent) (*domain.VoidRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.voidErr != nil {
		return nil, b.voidErr
	}
	b.voids++
	return &domain.VoidRecord{ID: fmt.Sprintf("void-%d", b.voids), Reason: intent.Reason, Total: intent.Total}, nil
}

type JournalMock struct {
	summary *journal.ShiftSummary
	err     error
}

func (j JournalMock) ShiftSummary(_ context.Context, shiftID string) (*journal.ShiftSummary, error) {
	if j.err != nil {
		return nil, j.err
	}
	s := *j.summary
	s.ShiftID = shiftID
	return &s, nil
}

type nopPrinter struct{}

func (nopPrinter) Print(context.Context, domain.SaleRecord, string) error { return nil }
