package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Printer hands a committed sale to whatever produces the receipt.
type Printer interface {
	Print(ctx context.Context, record domain.SaleRecord, outletID string) error
}

type printJob struct {
	OutletID string            `json:"outlet_id"`
	Record   domain.SaleRecord `json:"record"`
}

// HTTPPrinter posts print jobs to a local print agent.
type HTTPPrinter struct {
	url    string
	client *http.Client
}

func NewHTTPPrinter(agentURL string, timeout time.Duration) *HTTPPrinter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPrinter{
		url: strings.TrimRight(agentURL, "/") + "/print",
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (p *HTTPPrinter) Print(ctx context.Context, record domain.SaleRecord, outletID string) error {
	body, err := json.Marshal(printJob{OutletID: outletID, Record: record})
	if err != nil {
		return fmt.Errorf("marshal print job failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build print request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("print agent unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("print agent returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// LogPrinter stands in when no print agent is configured.
type LogPrinter struct {
	log *zap.Logger
}

func NewLogPrinter(log *zap.Logger) *LogPrinter {
	return &LogPrinter{log: logger.OrNop(log)}
}

func (p *LogPrinter) Print(ctx context.Context, record domain.SaleRecord, outletID string) error {
	logger.WithTrace(ctx, p.log).Info("receipt",
		zap.String("transaction_id", record.ID),
		zap.String("receipt_number", record.ReceiptNumber),
		zap.String("outlet_id", outletID),
		zap.String("total", record.Total.StringFixed(2)),
		zap.Int("items", len(record.Items)))
	return nil
}
