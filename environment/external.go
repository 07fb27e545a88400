package environment

import (
	"sync"

	"github.com/KOMKZ/go-yogan-confenv/config"
)

// externalStore owns the global and application external maps.
// Set swaps in a fresh map; origins created earlier keep the map they were given.
type externalStore struct {
	mu     sync.RWMutex
	global *config.PropertyMap
	app    *config.PropertyMap
}

func newExternalStore() *externalStore {
	return &externalStore{
		global: config.NewPropertyMap(nil),
		app:    config.NewPropertyMap(nil),
	}
}

func (s *externalStore) current(app bool) *config.PropertyMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app {
		return s.app
	}
	return s.global
}

func (s *externalStore) replace(app bool, m map[string]string) {
	fresh := config.NewPropertyMap(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if app {
		s.app = fresh
	} else {
		s.global = fresh
	}
}

func (s *externalStore) update(app bool, m map[string]string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app {
		s.app.PutAll(m)
	} else {
		s.global.PutAll(m)
	}
}

func (s *externalStore) snapshot(app bool) map[string]string {
	return s.current(app).Snapshot()
}
