package checkout

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"go.uber.org/zap"
)

// publishCompletion prefers what the backend echoed and falls back to the session the sale ran under.
func (o *Orchestrator) publishCompletion(record *domain.SaleRecord, outletID, shiftID string) {
	if record.OutletID != "" {
		outletID = record.OutletID
	}
	if record.ShiftID != "" {
		shiftID = record.ShiftID
	}
	if o.completions != nil {
		delivered := o.completions.Publish(domain.CompletionEvent{
			TransactionID: record.ID,
			ReceiptNumber: record.ReceiptNumber,
			OutletID:      outletID,
			ShiftID:       shiftID,
			Record:        *record,
		})
		o.log.Debug("completion broadcast", zap.String("transaction_id", record.ID), zap.Int("subscribers", delivered))
	}
	if o.notices != nil {
		o.notices.Publish(events.NoticeSaleCompleted, events.LevelInfo,
			fmt.Sprintf("Sale %s completed", record.ReceiptNumber))
	}
}

// dispatchPrint prints on its own goroutine. Failures are reported, never retried.
func (o *Orchestrator) dispatchPrint(ctx context.Context, record domain.SaleRecord, outletID string) {
	go func() {
		printCtx, cancel := context.WithTimeout(ctx, o.printTimeout)
		defer cancel()

		if err := o.printer.Print(printCtx, record, outletID); err != nil {
			o.log.Error("receipt print failed",
				zap.String("transaction_id", record.ID),
				zap.String("receipt_number", record.ReceiptNumber),
				zap.Error(err))
			if o.notices != nil {
				o.notices.Publish(events.NoticePrintFailed, events.LevelWarning,
					fmt.Sprintf("Sale %s was saved but the receipt did not print", record.ReceiptNumber))
			}
		}
	}()
}
