package storage

import (
	"sort"
	"sync"
)

// Memory is an in-process Handler. Useful for tests and for applications
// that want session-only preferences.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]any
	lists   map[string][]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]any),
		lists:   make(map[string][]string),
	}
}

// SaveObject stores a scalar value under key.
func (m *Memory) SaveObject(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = value
	return nil
}

// LoadObject returns the stored value or the default on a miss.
func (m *Memory) LoadObject(key string, defaultValue any) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.objects[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

// SaveList stores an ordered sequence under key.
func (m *Memory) SaveList(key string, elements []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(elements))
	copy(cp, elements)
	m.lists[key] = cp
	return nil
}

// LoadList returns the stored sequence or the default on a miss.
func (m *Memory) LoadList(key string, defaultElements []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.lists[key]; ok {
		cp := make([]string, len(l))
		copy(cp, l)
		return cp, nil
	}
	return defaultElements, nil
}

// ClearPreferences removes every stored key.
func (m *Memory) ClearPreferences() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = make(map[string]any)
	m.lists = make(map[string][]string)
	return nil
}

// Delete removes a stored key. Deleting an absent key is a no-op.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.lists, key)
	return nil
}

// Keys lists every stored key, sorted.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects)+len(m.lists))
	for k := range m.objects {
		keys = append(keys, k)
	}
	for k := range m.lists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects) + len(m.lists)
}
