package http

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/journal"
	"github.com/fjod/go_cart/pos-terminal/internal/terminal"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.uber.org/zap"
)

type ShiftSummarizer interface {
	ShiftSummary(ctx context.Context, shiftID string) (*journal.ShiftSummary, error)
}

// Handler serves the operator API for one terminal.
type Handler struct {
	term    *terminal.Terminal
	journal ShiftSummarizer
	timeout time.Duration
	log     *zap.Logger

	streamsDone chan struct{}
	closeOnce   sync.Once
}

// NewHandler builds the API handlers. journal may be nil.
func NewHandler(term *terminal.Terminal, journal ShiftSummarizer, timeout time.Duration, log *zap.Logger) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		term:    term,
		journal: journal,
		timeout: timeout,
		log:     logger.OrNop(log),

		streamsDone: make(chan struct{}),
	}
}

// CloseStreams ends every open cart stream. Safe to call more than once.
func (h *Handler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.streamsDone) })
}
