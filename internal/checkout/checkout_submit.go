package checkout

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"go.uber.org/zap"
)

func (o *Orchestrator) submitSale(ctx context.Context, intent domain.TransactionIntent) (*domain.SaleRecord, error) {
	record, err := o.sales.CreateSale(ctx, intent)
	if err != nil {
		o.log.Warn("create sale failed",
			zap.String("outlet_id", intent.OutletID),
			zap.String("total", intent.Total.StringFixed(2)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to submit sale: %w", err)
	}
	return record, nil
}

// reconcile re-reads the committed sale. The create response stands in when the read fails.
func (o *Orchestrator) reconcile(ctx context.Context, created *domain.SaleRecord) *domain.SaleRecord {
	if created.ID == "" {
		return created
	}
	fetched, err := o.sales.GetSale(ctx, created.ID)
	if err != nil || fetched == nil {
		o.log.Warn("sale reconciliation failed, using create response",
			zap.String("transaction_id", created.ID),
			zap.Error(err))
		return created
	}
	return fetched
}
