package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.uber.org/zap"
)

const recordTimeout = 5 * time.Second

// Recorder writes every completion and void it hears about into the journal.
type Recorder struct {
	repo RepoInterface
	log  *zap.Logger
	now  func() time.Time
}

func NewRecorder(repo RepoInterface, log *zap.Logger) *Recorder {
	return &Recorder{
		repo: repo,
		log:  logger.OrNop(log),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Run consumes both streams until ctx is done or both channels are closed.
func (r *Recorder) Run(ctx context.Context, sales <-chan domain.CompletionEvent, voids <-chan domain.VoidEvent) {
	for sales != nil || voids != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sales:
			if !ok {
				sales = nil
				continue
			}
			r.RecordSale(ctx, ev)
		case ev, ok := <-voids:
			if !ok {
				voids = nil
				continue
			}
			r.RecordVoid(ctx, ev)
		}
	}
}

func (r *Recorder) RecordSale(ctx context.Context, ev domain.CompletionEvent) {
	r.record(ctx, Entry{
		Kind:          KindSale,
		TransactionID: ev.TransactionID,
		ReceiptNumber: ev.ReceiptNumber,
		OutletID:      ev.OutletID,
		ShiftID:       ev.ShiftID,
		Total:         ev.Record.Total.Decimal,
	}, ev.Record)
}

func (r *Recorder) RecordVoid(ctx context.Context, ev domain.VoidEvent) {
	r.record(ctx, Entry{
		Kind:          KindVoid,
		TransactionID: ev.VoidID,
		ReceiptNumber: ev.ReceiptNumber,
		OutletID:      ev.OutletID,
		ShiftID:       ev.ShiftID,
		Total:         ev.Record.Total.Decimal,
	}, ev.Record)
}

func (r *Recorder) record(ctx context.Context, entry Entry, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		r.log.Error("journal payload marshal failed", zap.String("transaction_id", entry.TransactionID), zap.Error(err))
		return
	}
	entry.Payload = body
	entry.RecordedAt = r.now()

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	inserted, err := r.repo.Record(recordCtx, entry)
	if err != nil {
		r.log.Error("journal record failed",
			zap.String("kind", string(entry.Kind)),
			zap.String("transaction_id", entry.TransactionID),
			zap.Error(err))
		return
	}
	if !inserted {
		r.log.Debug("journal entry already recorded", zap.String("transaction_id", entry.TransactionID))
	}
}
