package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrVariationNotFound = errors.New("variation not found on product")
	ErrUnitNotFound      = errors.New("unit not found on product")
)

type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	source ProductSource
	cache  ProductCache
	sfg    singleflight.Group // one backend fetch per product id at a time
	log    *zap.Logger
}

// NewService builds a cache-aside catalog. cache may be nil.
func NewService(source ProductSource, cache ProductCache, log *zap.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		log:    logger.OrNop(log),
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		if s.cache != nil {
			product, err := s.cache.Get(ctx, id)
			if err == nil {
				return product, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				s.log.Warn("catalog cache get failed", zap.String("product_id", id), zap.Error(err))
			}
		}

		product, err := s.source.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			go func(p domain.Product) {
				setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := s.cache.Set(setCtx, &p); err != nil {
					s.log.Warn("catalog cache set failed", zap.String("product_id", p.ID), zap.Error(err))
				}
			}(*product)
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}

	return cloneProduct(v.(*domain.Product)), nil
}

// cloneProduct gives each caller of a shared singleflight result its own product.
func cloneProduct(p *domain.Product) *domain.Product {
	out := *p
	out.Variations = append([]domain.Variation(nil), p.Variations...)
	out.Units = append([]domain.Unit(nil), p.Units...)
	return &out
}

// invalidate drops a product from the cache so the next lookup hits the backend.
func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("catalog cache invalidate failed", zap.String("product_id", id), zap.Error(err))
	}
}

// Selection is a product with the optional selectors an operator picked.
type Selection struct {
	Product   domain.Product
	Variation *domain.Variation
	Unit      *domain.Unit
}

// Select loads the product and resolves the variation and unit ids against it. Empty ids mean none.
// A selector missing from a cached product triggers one refetch, since the cache may predate it.
func (s *Service) Select(ctx context.Context, productID, variationID, unitID string) (*Selection, error) {
	sel, err := s.selectFrom(ctx, productID, variationID, unitID)
	if s.cache != nil && (errors.Is(err, ErrVariationNotFound) || errors.Is(err, ErrUnitNotFound)) {
		s.invalidate(ctx, productID)
		return s.selectFrom(ctx, productID, variationID, unitID)
	}
	return sel, err
}

func (s *Service) selectFrom(ctx context.Context, productID, variationID, unitID string) (*Selection, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	sel := &Selection{Product: *product}
	if sel.Variation, err = FindVariation(&sel.Product, variationID); err != nil {
		return nil, err
	}
	if sel.Unit, err = FindUnit(&sel.Product, unitID); err != nil {
		return nil, err
	}
	return sel, nil
}

func FindVariation(product *domain.Product, id string) (*domain.Variation, error) {
	if id == "" {
		return nil, nil
	}
	v, ok := product.Variation(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVariationNotFound, id)
	}
	return v, nil
}

func FindUnit(product *domain.Product, id string) (*domain.Unit, error) {
	if id == "" {
		return nil, nil
	}
	u, ok := product.Unit(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, id)
	}
	return u, nil
}
