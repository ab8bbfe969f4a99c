package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type SaleType string

const (
	SaleTypeRetail    SaleType = "retail"
	SaleTypeWholesale SaleType = "wholesale"
)

func (s SaleType) Valid() bool {
	return s == SaleTypeRetail || s == SaleTypeWholesale
}

func (s SaleType) String() string {
	return string(s)
}

func ParseSaleType(v string) (SaleType, error) {
	s := SaleType(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSaleType, v)
	}
	return s, nil
}

// Price is an optional amount decoded from loosely typed catalog payloads.
// Numbers and numeric strings are defined; null, missing and anything else are not.
type Price struct {
	Value decimal.Decimal
	Set   bool
}

func NewPrice(v decimal.Decimal) Price {
	return Price{Value: v, Set: true}
}

func PriceFromString(v string) Price {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return Price{}
	}
	return NewPrice(d)
}

func (p Price) Defined() bool {
	return p.Set
}

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*p = PriceFromString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil // booleans, objects, arrays
	}
	*p = PriceFromString(n.String())
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Set {
		return []byte("null"), nil
	}
	return []byte(p.Value.String()), nil
}

type Product struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	RetailPrice    Price       `json:"retail_price"`
	WholesalePrice Price       `json:"wholesale_price"`
	Variations     []Variation `json:"variations,omitempty"`
	Units          []Unit      `json:"units,omitempty"`
}

// Variation is a distinct sellable configuration of a product.
type Variation struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price Price  `json:"price"`
}

// Unit is a sellable conversion of the base product, such as a case.
type Unit struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	RetailPrice    Price  `json:"retail_price"`
	WholesalePrice Price  `json:"wholesale_price"`
}

func (p *Product) Variation(id string) (*Variation, bool) {
	for i := range p.Variations {
		if p.Variations[i].ID == id {
			return &p.Variations[i], true
		}
	}
	return nil, false
}

func (p *Product) Unit(id string) (*Unit, bool) {
	for i := range p.Units {
		if p.Units[i].ID == id {
			return &p.Units[i], true
		}
	}
	return nil, false
}
