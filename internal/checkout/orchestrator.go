package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/printer"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.uber.org/zap"
)

const defaultPrintTimeout = 15 * time.Second

// Orchestrator turns the live cart into a committed sale on the backend.
type Orchestrator struct {
	cart         Cart
	session      Session
	sales        SaleSubmitter
	completions  Publisher[domain.CompletionEvent]
	printer      printer.Printer
	notices      Notifier
	printTimeout time.Duration
	inFlight     atomic.Bool
	log          *zap.Logger
}

type Options struct {
	Cart         Cart
	Session      Session
	Sales        SaleSubmitter
	Completions  Publisher[domain.CompletionEvent]
	Printer      printer.Printer
	Notices      Notifier
	PrintTimeout time.Duration
	Log          *zap.Logger
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.PrintTimeout <= 0 {
		opts.PrintTimeout = defaultPrintTimeout
	}
	log := logger.OrNop(opts.Log)
	if opts.Printer == nil {
		opts.Printer = printer.NewLogPrinter(log)
	}
	return &Orchestrator{
		cart:         opts.Cart,
		session:      opts.Session,
		sales:        opts.Sales,
		completions:  opts.Completions,
		printer:      opts.Printer,
		notices:      opts.Notices,
		printTimeout: opts.PrintTimeout,
		log:          log,
	}
}

// InFlight reports whether a checkout is between payment capture and commit.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Checkout runs the sale flow. On any error before commit the cart is left as it was.
func (o *Orchestrator) Checkout(ctx context.Context, payments PaymentCapturer) (*domain.SaleRecord, error) {
	outletID, shiftID, err := o.checkPreconditions()
	if err != nil {
		return nil, err
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer o.inFlight.Store(false)

	freeze, err := o.cart.Freeze()
	if err != nil {
		return nil, err
	}
	snap := freeze.Snapshot()
	if snap.Empty() {
		freeze.Release()
		return nil, ErrEmptyCart
	}

	intent := buildIntent(snap, outletID, shiftID)
	payment, err := payments.Capture(ctx, intent.Total.Decimal)
	if err != nil {
		freeze.Release()
		return nil, fmt.Errorf("payment capture failed: %w", err)
	}
	if payment == nil {
		freeze.Release()
		return nil, ErrPaymentCancelled
	}
	applyPayment(&intent, payment)

	// backend calls outlive a cancelled request so a sale is never half-submitted
	callCtx := context.WithoutCancel(ctx)

	created, err := o.submitSale(callCtx, intent)
	if err != nil {
		freeze.Release()
		return nil, err
	}

	record := o.reconcile(callCtx, created)
	o.publishCompletion(record, outletID, shiftID)
	freeze.ClearAndRelease()
	o.dispatchPrint(callCtx, *record, outletID)

	logger.WithTrace(ctx, o.log).Info("sale committed",
		zap.String("transaction_id", record.ID),
		zap.String("receipt_number", record.ReceiptNumber),
		zap.String("total", record.Total.StringFixed(2)))
	return record, nil
}

func (o *Orchestrator) checkPreconditions() (outletID, shiftID string, err error) {
	if o.cart.Empty() {
		return "", "", ErrEmptyCart
	}
	if outletID = o.session.OutletID(); outletID == "" {
		return "", "", ErrNoOutlet
	}
	if shiftID = o.session.ShiftID(); shiftID == "" {
		return "", "", ErrNoShift
	}
	return outletID, shiftID, nil
}
