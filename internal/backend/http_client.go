package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/pkg/circuitbreaker"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseSize = 4 << 20

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Breaker circuitbreaker.Config
}

type HTTPClient struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     *zap.Logger
}

func NewHTTPClient(cfg Config, log *zap.Logger) *HTTPClient {
	log = logger.OrNop(log)
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		timeout: cfg.Timeout,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[[]byte]("commerce-backend", cfg.Breaker, func(err error) bool {
			return err == nil || clientError(err)
		}, log),
		log: log,
	}
}

func (c *HTTPClient) CreateSale(ctx context.Context, intent domain.TransactionIntent) (*domain.SaleRecord, error) {
	var record domain.SaleRecord
	if err := c.do(ctx, http.MethodPost, "/api/sales", intent, &record); err != nil {
		return nil, fmt.Errorf("create sale failed: %w", err)
	}
	return &record, nil
}

func (c *HTTPClient) GetSale(ctx context.Context, id string) (*domain.SaleRecord, error) {
	var record domain.SaleRecord
	if err := c.do(ctx, http.MethodGet, "/api/sales/"+url.PathEscape(id), nil, &record); err != nil {
		return nil, fmt.Errorf("get sale %s failed: %w", id, err)
	}
	return &record, nil
}

func (c *HTTPClient) CreateVoid(ctx context.Context, intent domain.VoidIntent) (*domain.VoidRecord, error) {
	var record domain.VoidRecord
	if err := c.do(ctx, http.MethodPost, "/api/sales/void", intent, &record); err != nil {
		return nil, fmt.Errorf("create void failed: %w", err)
	}
	return &record, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &product); err != nil {
		return nil, fmt.Errorf("get product %s failed: %w", id, err)
	}
	return &product, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if err := json.Unmarshal(unwrap(data), out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}

	logger.WithTrace(ctx, c.log).Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// unwrap accepts both bare objects and {"data": {...}} envelopes.
func unwrap(data []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err == nil {
		if trimmed := bytes.TrimSpace(env.Data); len(trimmed) > 0 && trimmed[0] == '{' {
			return trimmed
		}
	}
	return data
}

func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
