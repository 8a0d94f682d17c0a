package directory

import (
	"sync"

	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

// Store is the directory's supplier registry. Implementations must be safe
// for concurrent use; the registry is read-mostly and List must return
// suppliers in a stable order within a process lifetime.
type Store interface {
	Put(info protocol.SupplierInfo)
	Get(supplierID string) (protocol.SupplierInfo, bool)
	List() []protocol.SupplierInfo
	Remove(supplierID string) bool
}

// MemoryStore is the in-memory Store used by the single logical registry.
// Iteration order is insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]protocol.SupplierInfo
}

// NewMemoryStore creates an empty in-memory supplier store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]protocol.SupplierInfo)}
}

// Put inserts or updates a supplier record. Updates keep the original
// insertion position so discovery order stays stable.
func (m *MemoryStore) Put(info protocol.SupplierInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[info.SupplierID]; !exists {
		m.order = append(m.order, info.SupplierID)
	}
	m.byID[info.SupplierID] = info
}

// Get returns the record for supplierID.
func (m *MemoryStore) Get(supplierID string) (protocol.SupplierInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.byID[supplierID]
	return info, ok
}

// List returns all registered suppliers in insertion order.
func (m *MemoryStore) List() []protocol.SupplierInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]protocol.SupplierInfo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Remove deletes a supplier record, reporting whether it existed.
func (m *MemoryStore) Remove(supplierID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[supplierID]; !ok {
		return false
	}
	delete(m.byID, supplierID)
	for i, id := range m.order {
		if id == supplierID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}
