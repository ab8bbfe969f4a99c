package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func product(id, price string) domain.Product {
	return domain.Product{ID: id, Name: id, RetailPrice: domain.NewPrice(dec(price))}
}

type fixture struct {
	store       *cart.Store
	sales       *MockSales
	printer     *MockPrinter
	notices     *events.NoticeLog
	completions *events.Broker[domain.CompletionEvent]
	sut         *Orchestrator
}

func newFixture(t *testing.T, session staticSession) *fixture {
	t.Helper()
	f := &fixture{
		store: cart.NewStore(domain.SaleTypeRetail),
		sales: &MockSales{
			Created: &domain.SaleRecord{ID: "sale-1", ReceiptNumber: "R-1", OutletID: "outlet-1", ShiftID: "shift-1", Total: domain.NewMoney(dec("49.50"))},
		},
		printer:     &MockPrinter{},
		notices:     events.NewNoticeLog(10),
		completions: events.NewBroker[domain.CompletionEvent](4),
	}
	f.sut = NewOrchestrator(Options{
		Cart:         f.store,
		Session:      session,
		Sales:        f.sales,
		Completions:  f.completions,
		Printer:      f.printer,
		Notices:      f.notices,
		PrintTimeout: time.Second,
	})
	return f
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	_, err := f.store.AddLine(product("p1", "20.00"), nil, nil, 2)
	require.NoError(t, err)
	_, err = f.store.AddLine(product("p2", "15.00"), nil, nil, 1)
	require.NoError(t, err)
	require.NoError(t, f.store.SetDiscount(domain.Discount{Kind: domain.DiscountPercentage, Value: dec("10"), Reason: "loyal"}))
	require.NoError(t, f.store.SetCustomer(domain.Customer{ID: "c1", Name: "Ana"}))
}

var cash = Tender("cash", nil)

func TestCheckout_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		session staticSession
		fill    bool
		want    error
	}{
		{"empty cart wins", staticSession{}, false, ErrEmptyCart},
		{"no outlet", staticSession{shift: "shift-1"}, true, ErrNoOutlet},
		{"no shift", staticSession{outlet: "outlet-1"}, true, ErrNoShift},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.session)
			if tt.fill {
				f.fillCart(t)
			}
			captured := false
			payments := PaymentFunc(func(context.Context, decimal.Decimal) (*domain.Payment, error) {
				captured = true
				return &domain.Payment{Method: "cash"}, nil
			})

			record, err := f.sut.Checkout(context.Background(), payments)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, record)
			assert.False(t, captured)
			assert.Empty(t, f.sales.Intents)
		})
	}
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t, staticSession{outlet: "outlet-1", shift: "shift-1"})
	f.fillCart(t)
	f.sales.Fetched = &domain.SaleRecord{ID: "sale-1", ReceiptNumber: "R-1-final", OutletID: "outlet-1", ShiftID: "shift-1"}
	sub, unsub := f.completions.Subscribe()
	defer unsub()

	paid := dec("60")
	record, err := f.sut.Checkout(context.Background(), Tender("cash", &paid))
	require.NoError(t, err)
	assert.Equal(t, "R-1-final", record.ReceiptNumber)

	require.Len(t, f.sales.Intents, 1)
	intent := f.sales.Intents[0]
	assert.Equal(t, "outlet-1", intent.OutletID)
	assert.Equal(t, "shift-1", intent.ShiftID)
	assert.Equal(t, "c1", intent.CustomerID)
	assert.Equal(t, "55.00", intent.Subtotal.StringFixed(2))
	assert.Equal(t, "5.50", intent.Discount.StringFixed(2))
	assert.Equal(t, "49.50", intent.Total.StringFixed(2))
	assert.True(t, intent.Tax.IsZero())
	assert.Equal(t, domain.DiscountPercentage, intent.DiscountKind)
	assert.Equal(t, "cash", intent.PaymentMethod)
	assert.Equal(t, "10.50", intent.Change.StringFixed(2))
	require.Len(t, intent.Items, 2)

	snap := f.store.Snapshot()
	assert.True(t, snap.Empty())
	assert.Nil(t, snap.Discount)
	assert.Nil(t, snap.Customer)
	assert.False(t, snap.Frozen)
	assert.False(t, f.sut.InFlight())

	select {
	case ev := <-sub:
		assert.Equal(t, "sale-1", ev.TransactionID)
		assert.Equal(t, "R-1-final", ev.Record.ReceiptNumber)
	case <-time.After(time.Second):
		t.Fatal("no completion event")
	}
	select {
	case ev := <-sub:
		t.Fatalf("unexpected second event %v", ev)
	default:
	}

	require.Eventually(t, func() bool { return f.printer.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "R-1-final", f.printer.Printed[0].ReceiptNumber)
}

func TestCheckout_CreateFailureLeavesCartUntouched(t *testing.T) {
	f := newFixture(t, staticSession{outlet: "outlet-1", shift: "shift-1"})
	f.fillCart(t)
	before := f.store.Snapshot()
	f.sales.CreateErr = errors.New("backend down")

	record, err := f.sut.Checkout(context.Background(), cash)
	require.ErrorContains(t, err, "backend down")
	assert.Nil(t, record)

	after := f.store.Snapshot()
	assert.Equal(t, before, after)
	assert.False(t, f.sut.InFlight())
	assert.Equal(t, 0, f.printer.count())

	f.sales.CreateErr = nil
	_, err = f.sut.Checkout(context.Background(), cash)
	require.NoError(t, err, "retry after a failed submit")
}

func TestCheckout_ReconcileFailureFallsBackToCreateResponse(t *testing.T) {
	f := newFixture(t, staticSession{outlet: "outlet-1", shift: "shift-1"})
	f.fillCart(t)
	f.sales.GetErr = errors.New("timeout")

	record, err := f.sut.Checkout(context.Background(), cash)
	require.NoError(t, err)
	assert.Equal(t, "R-1", record.ReceiptNumber)
	assert.Equal(t, 1, f.sales.GetCalls)
	assert.True(t, f.store.Empty())
}

func TestCheckout_PaymentCancelled(t *testing.T) {
	f := newFixture(t, staticSession{outlet: "outlet-1", shift: "shift-1"})
	f.fillCart(t)

	_, err := f.sut.Checkout(context.Background(), Tender("", nil))
	assert.ErrorIs(t, err, ErrPaymentCancelled)
	assert.Empty(t, f.sales.Intents)
	assert.False(t, f.store.Snapshot().Frozen)
	assert.Equal(t, 3, f.store.ItemCount())
}

func TestCheckout_InsufficientTender(t *testing.T) {
	f := newFixture(t, staticSession{outlet: "outlet-1", shift: "shift-1"})
	f.fillCart(t)

	paid := dec("20")
	_, err := f.sut.Checkout(context.Background(), Tender("cash", &paid))
	assert.ErrorIs(t, err, ErrInsufficientTender)
	assert.False(t, f.store.Empty())
}

func TestCheckout_SecondCheckoutWhileInFlight(t *testing.T) {
	f := newFixture(t, staticSession{outlet: "outlet-1", shift: "shift-1"})
	f.fillCart(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.sales.beforeDone = func() {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.sut.Checkout(context.Background(), cash)
		done <- err
	}()
	<-entered

	_, err := f.sut.Checkout(context.Background(), cash)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	_, err = f.store.AddLine(product("p3", "1"), nil, nil, 1)
	assert.ErrorIs(t, err, cart.ErrCartFrozen)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, f.sales.Intents, 1)
}

func TestCheckout_PrintFailurePublishesNotice(t *testing.T) {
	f := newFixture(t, staticSession{outlet: "outlet-1", shift: "shift-1"})
	f.fillCart(t)
	f.printer.Err = errors.New("paper out")

	record, err := f.sut.Checkout(context.Background(), cash)
	require.NoError(t, err)
	require.NotNil(t, record)

	require.Eventually(t, func() bool {
		notices := f.notices.Since(0)
		return len(notices) == 2 &&
			notices[0].Kind == events.NoticeSaleCompleted &&
			notices[1].Kind == events.NoticePrintFailed
	}, time.Second, 10*time.Millisecond)
	assert.True(t, f.store.Empty())
}

func TestBuildIntent_AmountDiscountCanExceedSubtotal(t *testing.T) {
	store := cart.NewStore(domain.SaleTypeRetail)
	_, err := store.AddLine(product("p1", "55.00"), nil, nil, 1)
	require.NoError(t, err)
	require.NoError(t, store.SetDiscount(domain.Discount{Kind: domain.DiscountAmount, Value: dec("60")}))

	intent := buildIntent(store.Snapshot(), "o", "s")
	assert.Equal(t, "60.00", intent.Discount.StringFixed(2))
	assert.Equal(t, "-5.00", intent.Total.StringFixed(2))
}

func TestCheckout_MinimalBackendResponseKeepsSessionIDs(t *testing.T) {
	f := newFixture(t, staticSession{outlet: "outlet-1", shift: "shift-1"})
	f.fillCart(t)
	f.sales.Created = &domain.SaleRecord{ID: "sale-9", ReceiptNumber: "R-9"}
	f.sales.Fetched = &domain.SaleRecord{ID: "sale-9", ReceiptNumber: "R-9"}
	sub, unsub := f.completions.Subscribe()
	defer unsub()

	record, err := f.sut.Checkout(context.Background(), cash)
	require.NoError(t, err)
	assert.Equal(t, "sale-9", record.ID)

	select {
	case ev := <-sub:
		assert.Equal(t, "sale-9", ev.TransactionID)
		assert.Equal(t, "R-9", ev.ReceiptNumber)
		assert.Equal(t, "outlet-1", ev.OutletID)
		assert.Equal(t, "shift-1", ev.ShiftID)
	case <-time.After(time.Second):
		t.Fatal("no completion event")
	}

	notices := f.notices.Since(0)
	require.Len(t, notices, 1)
	assert.Equal(t, events.NoticeSaleCompleted, notices[0].Kind)
	assert.Equal(t, "Sale R-9 completed", notices[0].Message)
}
