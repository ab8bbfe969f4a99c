package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

var (
	ErrNotFound    = errors.New("backend resource not found")
	ErrUnavailable = errors.New("backend unavailable")
)

// Client is the remote commerce backend, the system of record for sales and voids.
type Client interface {
	CreateSale(ctx context.Context, intent domain.TransactionIntent) (*domain.SaleRecord, error)
	GetSale(ctx context.Context, id string) (*domain.SaleRecord, error)
	CreateVoid(ctx context.Context, intent domain.VoidIntent) (*domain.VoidRecord, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// clientError reports 4xx answers, which say nothing about backend health.
func clientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}
