package config

import (
	"sync"
)

// PropertyMap is a string map safe for concurrent use.
// Origins that hold a *PropertyMap read it live: PutAll on the same
// map is visible to them immediately.
type PropertyMap struct {
	mu    sync.RWMutex
	props map[string]string
}

// NewPropertyMap copies initial into a new map
func NewPropertyMap(initial map[string]string) *PropertyMap {
	props := make(map[string]string, len(initial))
	for k, v := range initial {
		props[k] = v
	}
	return &PropertyMap{props: props}
}

// Get returns the value of key
func (m *PropertyMap) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.props[key]
	return v, ok
}

// Put sets key to value
func (m *PropertyMap) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key] = value
}

// PutAll merges entries, overwriting existing keys
func (m *PropertyMap) PutAll(entries map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.props[k] = v
	}
}

// Remove deletes key
func (m *PropertyMap) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.props, key)
}

// Len returns the number of entries
func (m *PropertyMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.props)
}

// Snapshot returns a copy of the entries
func (m *PropertyMap) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.props))
	for k, v := range m.props {
		out[k] = v
	}
	return out
}

func (m *PropertyMap) lookup(key string) (interface{}, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return v, true
}
