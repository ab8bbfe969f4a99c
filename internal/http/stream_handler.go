package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"go.uber.org/zap"
)

// StreamCart sends the cart as a server-sent event now and after every change.
func (h *Handler) StreamCart(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// the server write timeout is sized for ordinary requests
	_ = rc.SetWriteDeadline(time.Time{})

	updates, unsubscribe := h.term.SubscribeCart()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if !h.writeSnapshot(w, rc, h.term.Cart()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.streamsDone:
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if !h.writeSnapshot(w, rc, snap) {
				return
			}
		}
	}
}

func (h *Handler) writeSnapshot(w io.Writer, rc *http.ResponseController, snap cart.Snapshot) bool {
	data, err := json.Marshal(snap)
	if err != nil {
		h.log.Error("failed to encode cart snapshot", zap.Error(err))
		return false
	}
	if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", data); err != nil {
		return false
	}
	return rc.Flush() == nil
}
