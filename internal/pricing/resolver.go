package pricing

import (
	"strings"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
)

// candidate yields a price if the source defines one.
type candidate func() domain.Price

// ResolvePrice returns the unit price to charge. The first defined candidate wins:
// unit price for the sale type, variation price, product price for the sale type,
// product retail price, zero.
func ResolvePrice(product domain.Product, saleType domain.SaleType, variation *domain.Variation, unit *domain.Unit) decimal.Decimal {
	chain := []candidate{
		func() domain.Price { return unitPrice(unit, saleType) },
		func() domain.Price { return variationPrice(variation) },
		func() domain.Price { return productPrice(product, saleType) },
		func() domain.Price { return product.RetailPrice },
	}

	for _, next := range chain {
		if p := next(); p.Defined() {
			return p.Value
		}
	}
	return decimal.Zero
}

func unitPrice(unit *domain.Unit, saleType domain.SaleType) domain.Price {
	if unit == nil {
		return domain.Price{}
	}
	if saleType == domain.SaleTypeWholesale && unit.WholesalePrice.Defined() {
		return unit.WholesalePrice
	}
	return unit.RetailPrice
}

func variationPrice(variation *domain.Variation) domain.Price {
	if variation == nil {
		return domain.Price{}
	}
	return variation.Price
}

func productPrice(product domain.Product, saleType domain.SaleType) domain.Price {
	if saleType == domain.SaleTypeWholesale && product.WholesalePrice.Defined() {
		return product.WholesalePrice
	}
	return product.RetailPrice
}

// DisplayName renders "Product - Variation (Unit)", omitting the parts that are absent.
func DisplayName(product domain.Product, variation *domain.Variation, unit *domain.Unit) string {
	var b strings.Builder
	b.WriteString(product.Name)
	if variation != nil && variation.Name != "" {
		b.WriteString(" - ")
		b.WriteString(variation.Name)
	}
	if unit != nil && unit.Name != "" {
		b.WriteString(" (")
		b.WriteString(unit.Name)
		b.WriteString(")")
	}
	return b.String()
}
