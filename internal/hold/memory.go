package hold

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

// MemoryRepository keeps encoded entries in a map, for tests and single-box setups.
type MemoryRepository struct {
	mu        sync.RWMutex
	entries   map[string][]byte // namespaced key -> JSON
	namespace string
	now       func() time.Time
}

func NewMemoryRepository(namespace string) *MemoryRepository {
	return &MemoryRepository{
		entries:   make(map[string][]byte),
		namespace: namespace,
		now:       time.Now,
	}
}

func (m *MemoryRepository) Hold(_ context.Context, lines []domain.CartLine, tableRef string) (string, error) {
	held, err := newHeld(lines, tableRef, m.now())
	if err != nil {
		return "", err
	}
	data, err := encode(held)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[holdKey(m.namespace, held.ID)] = data
	return held.ID, nil
}

func (m *MemoryRepository) List(_ context.Context) ([]domain.HeldTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := keyPrefix(m.namespace)
	held := make([]domain.HeldTransaction, 0, len(m.entries))
	for key, data := range m.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		h, err := decode(data)
		if err != nil {
			continue
		}
		held = append(held, *h)
	}

	sortNewestFirst(held)
	return held, nil
}

func (m *MemoryRepository) Retrieve(_ context.Context, id string) (*domain.HeldTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[holdKey(m.namespace, id)]
	if !ok {
		return nil, nil
	}
	h, err := decode(data)
	if err != nil {
		return nil, nil
	}
	return h, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, holdKey(m.namespace, id))
	return nil
}

func (m *MemoryRepository) Ping(context.Context) error {
	return nil
}
