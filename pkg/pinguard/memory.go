package pinguard

import "sync"

// MemoryStore is an in-process RememberStore.
type MemoryStore struct {
	mu sync.Mutex
	id *Identity
}

func (m *MemoryStore) Remember(id Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = &id
}

func (m *MemoryStore) Forget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = nil
}

// Load returns the remembered identity, if any.
func (m *MemoryStore) Load() (Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == nil {
		return Identity{}, false
	}
	return *m.id, true
}
