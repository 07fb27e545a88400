package dynamic

import (
	"context"
	"sync"

	"github.com/KOMKZ/go-yogan-confenv/config"
)

// MemoryDynamicConfiguration keeps groups of properties in process.
// Useful for tests and for pushing configuration programmatically.
type MemoryDynamicConfiguration struct {
	group     string
	mu        sync.RWMutex
	groups    map[string]*config.PropertyMap
	listeners *listenerSet
}

// NewMemoryDynamicConfiguration creates an empty store whose default group is group
func NewMemoryDynamicConfiguration(group string) *MemoryDynamicConfiguration {
	if group == "" {
		group = DefaultGroup
	}
	return &MemoryDynamicConfiguration{
		group:     group,
		groups:    map[string]*config.PropertyMap{group: config.NewPropertyMap(nil)},
		listeners: newListenerSet(),
	}
}

func (m *MemoryDynamicConfiguration) groupMap(group string, create bool) *config.PropertyMap {
	if group == "" {
		group = m.group
	}
	m.mu.RLock()
	g, ok := m.groups[group]
	m.mu.RUnlock()
	if ok || !create {
		return g
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok = m.groups[group]; !ok {
		g = config.NewPropertyMap(nil)
		m.groups[group] = g
	}
	return g
}

// GetProperty reads the default group
func (m *MemoryDynamicConfiguration) GetProperty(key string) (interface{}, bool) {
	v, ok := m.groupMap("", false).Get(key)
	if !ok {
		return nil, false
	}
	return v, true
}

// GetConfig reads key from group
func (m *MemoryDynamicConfiguration) GetConfig(_ context.Context, key, group string) (string, bool, error) {
	g := m.groupMap(group, false)
	if g == nil {
		return "", false, nil
	}
	v, ok := g.Get(key)
	return v, ok, nil
}

// Put sets key in the default group and notifies listeners
func (m *MemoryDynamicConfiguration) Put(key, value string) {
	applyChange(m.groupMap("", true), m.listeners, key, value, false)
}

// PutConfig sets key in group; only default-group changes reach listeners
func (m *MemoryDynamicConfiguration) PutConfig(group, key, value string) {
	g := m.groupMap(group, true)
	if group == "" || group == m.group {
		applyChange(g, m.listeners, key, value, false)
		return
	}
	g.Put(key, value)
}

// Remove deletes key from the default group
func (m *MemoryDynamicConfiguration) Remove(key string) {
	applyChange(m.groupMap("", true), m.listeners, key, "", true)
}

// AddListener implements DynamicConfiguration
func (m *MemoryDynamicConfiguration) AddListener(key string, l ConfigurationListener) {
	m.listeners.add(key, l)
}

// RemoveListener implements DynamicConfiguration
func (m *MemoryDynamicConfiguration) RemoveListener(key string, l ConfigurationListener) {
	m.listeners.remove(key, l)
}

// Close implements DynamicConfiguration
func (m *MemoryDynamicConfiguration) Close() error {
	return nil
}
