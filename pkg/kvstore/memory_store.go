package kvstore

import "sync"

// MemoryStore keeps values in a process-local map. Values are copied on the
// way in and out so callers never share map or slice storage with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]Value
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]Value)}
}

func (m *MemoryStore) Get(key string) (Value, bool, error) {
	if key == "" {
		return Value{}, false, ErrEmptyKey
	}

	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()

	if !ok {
		return Value{}, false, nil
	}
	return v.clone(), true, nil
}

func (m *MemoryStore) Set(key string, v Value) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !v.IsValid() {
		return ErrInvalidValue
	}

	m.mu.Lock()
	m.values[key] = v.clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
