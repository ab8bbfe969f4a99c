package hold

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/oklog/ulid/v2"
)

var (
	ErrNothingToHold  = errors.New("cannot hold an empty cart")
	ErrMalformedEntry = errors.New("malformed held transaction")
)

// Repository stores suspended carts under namespaced keys. Writers are not coordinated:
// two terminals sharing a namespace can race on list and delete.
type Repository interface {
	// Hold writes a copy of lines and returns the generated id. The live cart is not touched.
	Hold(ctx context.Context, lines []domain.CartLine, tableRef string) (string, error)

	// List returns every readable entry, newest first. Malformed entries are skipped.
	List(ctx context.Context) ([]domain.HeldTransaction, error)

	// Retrieve returns nil without error when id is unknown.
	Retrieve(ctx context.Context, id string) (*domain.HeldTransaction, error)

	// Delete is idempotent.
	Delete(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}

func keyPrefix(namespace string) string {
	return fmt.Sprintf("held:%s:", namespace)
}

func holdKey(namespace, id string) string {
	return keyPrefix(namespace) + id
}

func newHeld(lines []domain.CartLine, tableRef string, now time.Time) (domain.HeldTransaction, error) {
	if len(lines) == 0 {
		return domain.HeldTransaction{}, ErrNothingToHold
	}
	return domain.HeldTransaction{
		ID:        ulid.Make().String(),
		Lines:     domain.CloneLines(lines),
		TableRef:  tableRef,
		Timestamp: now.UTC(),
	}, nil
}

func encode(h domain.HeldTransaction) ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal held transaction failed: %w", err)
	}
	return data, nil
}

// decode rejects anything that is not a held transaction written by this package.
func decode(data []byte) (*domain.HeldTransaction, error) {
	var h domain.HeldTransaction
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	if h.ID == "" || h.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: missing id or timestamp", ErrMalformedEntry)
	}
	return &h, nil
}

func sortNewestFirst(held []domain.HeldTransaction) {
	sort.SliceStable(held, func(i, j int) bool {
		if held[i].Timestamp.Equal(held[j].Timestamp) {
			return held[i].ID > held[j].ID
		}
		return held[i].Timestamp.After(held[j].Timestamp)
	})
}
