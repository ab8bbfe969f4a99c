package cart

import (
	"errors"
	"sync"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"github.com/fjod/go_cart/pos-terminal/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCartFrozen   = errors.New("cart is locked by a checkout or void in progress")
	ErrCartNotEmpty = errors.New("cart must be empty to change sale type")
)

// LinePatch holds the line fields an operator may edit. Nil fields are left alone.
type LinePatch struct {
	Quantity *int
	Notes    *string
}

// Snapshot is a deep copy of the cart with derived totals.
type Snapshot struct {
	Lines     []domain.CartLine `json:"lines"`
	SaleType  domain.SaleType   `json:"sale_type"`
	Discount  *domain.Discount  `json:"discount,omitempty"`
	Customer  *domain.Customer  `json:"customer,omitempty"`
	ItemCount int               `json:"item_count"`
	Totals    pricing.Totals    `json:"totals"`
	Frozen    bool              `json:"frozen"`
}

func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Store is the single owner of the live cart: lines, discount, selected customer and sale type.
type Store struct {
	mu       sync.Mutex
	lines    []domain.CartLine
	saleType domain.SaleType
	discount *domain.Discount
	customer *domain.Customer
	freeze   *Freeze
	newID    func() string
	changes  *events.Broker[Snapshot]
}

func NewStore(saleType domain.SaleType) *Store {
	if !saleType.Valid() {
		saleType = domain.SaleTypeRetail
	}
	return &Store{
		saleType: saleType,
		newID:    uuid.NewString,
		changes:  events.NewBroker[Snapshot](events.DefaultBuffer),
	}
}

// AddLine prices the selection with the current sale type and appends it as a new line.
// Identical selections are never merged.
func (s *Store) AddLine(product domain.Product, variation *domain.Variation, unit *domain.Unit, quantity int) (domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return domain.CartLine{}, ErrCartFrozen
	}

	line := domain.CartLine{
		ID:          s.newID(),
		ProductID:   product.ID,
		DisplayName: pricing.DisplayName(product, variation, unit),
		UnitPrice:   pricing.ResolvePrice(product, s.saleType, variation, unit),
		Quantity:    clampQuantity(quantity),
		SaleType:    s.saleType,
	}
	if variation != nil {
		line.VariationID = variation.ID
	}
	if unit != nil {
		line.UnitID = unit.ID
	}

	s.lines = append(s.lines, line)
	s.publishLocked()
	return line, nil
}

// UpdateLine applies patch to the line with the given id. Unknown ids are ignored.
func (s *Store) UpdateLine(id string, patch LinePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	if patch.Quantity != nil {
		s.lines[i].Quantity = clampQuantity(*patch.Quantity)
	}
	if patch.Notes != nil {
		s.lines[i].Notes = *patch.Notes
	}
	s.publishLocked()
	return nil
}

// RemoveLine drops the line with the given id. Unknown ids are ignored.
func (s *Store) RemoveLine(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.publishLocked()
	return nil
}

// Clear empties the cart and resets the discount and selected customer.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}
	s.clearLocked()
	s.publishLocked()
	return nil
}

func (s *Store) SetDiscount(discount domain.Discount) error {
	if !discount.Kind.Valid() {
		return domain.ErrInvalidDiscountKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}
	s.discount = &discount
	s.publishLocked()
	return nil
}

func (s *Store) ClearDiscount() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}
	s.discount = nil
	s.publishLocked()
	return nil
}

func (s *Store) SetCustomer(customer domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}
	s.customer = &customer
	s.publishLocked()
	return nil
}

func (s *Store) ClearCustomer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}
	s.customer = nil
	s.publishLocked()
	return nil
}

func (s *Store) SaleType() domain.SaleType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saleType
}

// SetSaleType switches pricing mode. Only an empty cart can switch; existing lines are never re-priced.
func (s *Store) SetSaleType(saleType domain.SaleType) error {
	if !saleType.Valid() {
		return domain.ErrInvalidSaleType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}
	if len(s.lines) > 0 {
		return ErrCartNotEmpty
	}
	if s.saleType == saleType {
		return nil
	}
	s.saleType = saleType
	s.publishLocked()
	return nil
}

// Replace swaps in lines from a held transaction. Lines get fresh ids; discount and customer reset.
func (s *Store) Replace(lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeze != nil {
		return ErrCartFrozen
	}

	restored := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		l.ID = s.newID()
		l.Quantity = clampQuantity(l.Quantity)
		restored = append(restored, l)
	}
	s.lines = restored
	s.discount = nil
	s.customer = nil
	s.publishLocked()
	return nil
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.lines)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemCount(s.lines)
}

func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe streams a snapshot after every mutation. Slow readers miss intermediate states.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	return s.changes.Subscribe()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Lines:     domain.CloneLines(s.lines),
		SaleType:  s.saleType,
		ItemCount: itemCount(s.lines),
		Totals:    pricing.ComputeTotals(subtotal(s.lines), s.discount),
		Frozen:    s.freeze != nil,
	}
	if snap.Lines == nil {
		snap.Lines = []domain.CartLine{}
	}
	if s.discount != nil {
		d := *s.discount
		snap.Discount = &d
	}
	if s.customer != nil {
		c := *s.customer
		snap.Customer = &c
	}
	return snap
}

func (s *Store) publishLocked() {
	s.changes.Publish(s.snapshotLocked())
}

func (s *Store) clearLocked() {
	s.lines = nil
	s.discount = nil
	s.customer = nil
}

func (s *Store) indexLocked(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func subtotal(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

func itemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
