package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

type staticSession struct {
	outlet string
	shift  string
}

func (s staticSession) OutletID() string { return s.outlet }
func (s staticSession) ShiftID() string  { return s.shift }

// MockSales implements SaleSubmitter
type MockSales struct {
	mu         sync.Mutex
	Created    *domain.SaleRecord
	CreateErr  error
	Fetched    *domain.SaleRecord
	GetErr     error
	Intents    []domain.TransactionIntent
	GetCalls   int
	beforeDone func()
}

func (m *MockSales) CreateSale(_ context.Context, intent domain.TransactionIntent) (*domain.SaleRecord, error) {
	m.mu.Lock()
	m.Intents = append(m.Intents, intent)
	hook := m.beforeDone
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	record := *m.Created
	return &record, nil
}

func (m *MockSales) GetSale(_ context.Context, _ string) (*domain.SaleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Fetched, nil
}

// MockVoids implements VoidSubmitter
type MockVoids struct {
	Record     *domain.VoidRecord
	Err        error
	Intents    []domain.VoidIntent
	beforeDone func()
}

func (m *MockVoids) CreateVoid(_ context.Context, intent domain.VoidIntent) (*domain.VoidRecord, error) {
	m.Intents = append(m.Intents, intent)
	if m.beforeDone != nil {
		m.beforeDone()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Record, nil
}

// MockPrinter implements printer.Printer
type MockPrinter struct {
	mu      sync.Mutex
	Err     error
	Printed []domain.SaleRecord
}

func (m *MockPrinter) Print(_ context.Context, record domain.SaleRecord, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Printed = append(m.Printed, record)
	return m.Err
}

func (m *MockPrinter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Printed)
}
