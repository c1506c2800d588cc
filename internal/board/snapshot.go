package board

import (
	"sync"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
)

// SnapshotStore maps order id to the last fully reconciled order. It is the
// baseline transition detection compares against, so it must always reflect
// the list as of the previous reconciliation cycle: callers detect first,
// commit the new list, and only then overwrite the store. Writing earlier
// would erase the very transitions being detected.
type SnapshotStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{orders: make(map[string]order.Order)}
}

// Get returns the snapshot for the given order id, if any.
func (s *SnapshotStore) Get(id string) (order.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

// ReplaceAll overwrites the store with exactly one entry per order in list.
// Entries are full replacements, never partial merges; ids absent from list
// drop out of the store.
func (s *SnapshotStore) ReplaceAll(list []order.Order) {
	next := make(map[string]order.Order, len(list))
	for _, o := range list {
		next[o.ID] = o
	}

	s.mu.Lock()
	s.orders = next
	s.mu.Unlock()
}

// Len returns the number of snapshotted orders.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
