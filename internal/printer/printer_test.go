package printer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sale() domain.SaleRecord {
	return domain.SaleRecord{
		ID:            "sale-1",
		ReceiptNumber: "R-0001",
		Total:         domain.NewMoney(decimal.RequireFromString("49.5")),
	}
}

func TestHTTPPrinter_PostsJob(t *testing.T) {
	var job map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/print", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&job))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewHTTPPrinter(srv.URL+"/", time.Second)
	require.NoError(t, p.Print(context.Background(), sale(), "outlet-1"))

	assert.Equal(t, "outlet-1", job["outlet_id"])
	record := job["record"].(map[string]any)
	assert.Equal(t, "R-0001", record["receipt_number"])
}

func TestHTTPPrinter_AgentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "paper out", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewHTTPPrinter(srv.URL, time.Second).Print(context.Background(), sale(), "outlet-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paper out")
}

func TestHTTPPrinter_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPPrinter(url, time.Second).Print(context.Background(), sale(), "outlet-1")
	assert.ErrorContains(t, err, "print agent unreachable")
}

func TestLogPrinter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewLogPrinter(zap.New(core))

	require.NoError(t, p.Print(context.Background(), sale(), "outlet-1"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "R-0001", fields["receipt_number"])
	assert.Equal(t, "49.50", fields["total"])
}
