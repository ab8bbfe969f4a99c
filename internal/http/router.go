package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	HealthChecks       map[string]HealthCheck
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(MaxBodySize(cfg.MaxRequestBodySize))

	// bounded applies the request timeout everywhere except the long-lived cart stream.
	bounded := func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
	}

	r.Get("/health", healthHandler(cfg.HealthChecks))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/stream", h.StreamCart)
			r.Group(func(r chi.Router) {
				bounded(r)
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/lines", h.AddLine)
				r.Patch("/lines/{id}", h.UpdateLine)
				r.Delete("/lines/{id}", h.RemoveLine)
				r.Put("/discount", h.SetDiscount)
				r.Delete("/discount", h.ClearDiscount)
				r.Put("/customer", h.SetCustomer)
				r.Delete("/customer", h.ClearCustomer)
				r.Post("/mode", h.RequestMode)
				r.Post("/mode/confirm", h.ConfirmMode)
				r.Post("/mode/cancel", h.CancelMode)
				r.Post("/void", h.VoidCart)
			})
		})
		r.Group(func(r chi.Router) {
			bounded(r)
			r.Route("/holds", func(r chi.Router) {
				r.Get("/", h.ListHolds)
				r.Post("/", h.HoldCart)
				r.Post("/resume/confirm", h.ConfirmResume)
				r.Post("/resume/cancel", h.CancelResume)
				r.Get("/{id}", h.GetHold)
				r.Delete("/{id}", h.DeleteHold)
				r.Post("/{id}/resume", h.RequestResume)
			})
			r.Get("/session", h.GetSession)
			r.Put("/session", h.SetSession)
			r.Post("/checkout", h.Checkout)
			r.Get("/notices", h.Notices)
			r.Get("/journal/shifts/{id}", h.ShiftSummary)
		})
	})

	return otelhttp.NewHandler(r, "pos-terminal")
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failures := make(map[string]string)
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failures[name] = err.Error()
			}
		}
		if len(failures) > 0 {
			respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "degraded",
				"checks": failures,
			})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
