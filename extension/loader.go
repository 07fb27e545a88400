// Package extension is the registry of pluggable capabilities.
//
// A Loader holds named factories for one capability. An instance becomes
// "loaded" (active) the first time GetExtension builds it; the default
// extension is built separately and never counts as loaded.
package extension

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/KOMKZ/go-yogan-confenv/logger"
	"go.uber.org/zap"
)

// Factory builds one extension instance
type Factory[T any] func() (T, error)

// Loader registry of one capability's implementations
type Loader[T any] struct {
	capability string

	mu          sync.RWMutex
	factories   map[string]Factory[T]
	order       []string // registration order
	instances   map[string]T
	loaded      []string // load order
	defaultName string
	defaultInst *T

	logger *logger.CtxZapLogger
}

// NewLoader creates an empty loader for capability
func NewLoader[T any](capability string, log *logger.CtxZapLogger) *Loader[T] {
	if log == nil {
		log = logger.GetLogger("confenv")
	}
	return &Loader[T]{
		capability: capability,
		factories:  make(map[string]Factory[T]),
		instances:  make(map[string]T),
		logger:     log,
	}
}

// Capability returns the capability name
func (l *Loader[T]) Capability() string {
	return l.capability
}

// Register adds a named factory
func (l *Loader[T]) Register(name string, factory Factory[T]) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.factories[name]; exists {
		return ErrAlreadyRegistered.WithMsgf("extension %s/%s already registered", l.capability, name)
	}
	l.factories[name] = factory
	l.order = append(l.order, name)
	return nil
}

// Unregister removes the factory for name. Loaded instances and the default
// cannot be unregistered; the result reports whether name was removed.
func (l *Loader[T]) Unregister(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.factories[name]; !ok || name == l.defaultName {
		return false
	}
	if _, loaded := l.instances[name]; loaded {
		return false
	}
	delete(l.factories, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// MustRegister registers or panics (for built-in implementations)
func (l *Loader[T]) MustRegister(name string, factory Factory[T]) {
	if err := l.Register(name, factory); err != nil {
		panic(err)
	}
}

// SetDefault names the default extension; it must be registered
func (l *Loader[T]) SetDefault(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.factories[name]; !ok {
		return ErrNotFound.WithMsgf("extension %s/%s not found", l.capability, name)
	}
	l.defaultName = name
	l.defaultInst = nil
	return nil
}

// DefaultName returns the default extension name
func (l *Loader[T]) DefaultName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaultName
}

// Has reports whether name is registered
func (l *Loader[T]) Has(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.factories[name]
	return ok
}

// Names returns registered names in registration order
func (l *Loader[T]) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.order...)
}

// GetExtension returns the instance for name, building and activating it on first use
func (l *Loader[T]) GetExtension(name string) (T, error) {
	var zero T

	l.mu.RLock()
	if inst, ok := l.instances[name]; ok {
		l.mu.RUnlock()
		return inst, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if inst, ok := l.instances[name]; ok {
		return inst, nil
	}

	factory, ok := l.factories[name]
	if !ok {
		return zero, ErrNotFound.WithMsgf("extension %s/%s not found", l.capability, name)
	}

	inst, err := factory()
	if err != nil {
		return zero, ErrCreateFailed.WithMsgf("create extension %s/%s failed", l.capability, name).Wrap(err)
	}

	l.instances[name] = inst
	l.loaded = append(l.loaded, name)
	l.logger.DebugCtx(context.Background(), "Extension loaded",
		zap.String("capability", l.capability), zap.String("name", name))
	return inst, nil
}

// LoadedInstances returns the active instances in load order
func (l *Loader[T]) LoadedInstances() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]T, 0, len(l.loaded))
	for _, name := range l.loaded {
		out = append(out, l.instances[name])
	}
	return out
}

// LoadedNames returns the active extension names in load order
func (l *Loader[T]) LoadedNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.loaded...)
}

// DefaultExtension builds (once) and returns the default extension.
// The default instance is not added to the loaded set.
func (l *Loader[T]) DefaultExtension() (T, error) {
	var zero T

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.defaultInst != nil {
		return *l.defaultInst, nil
	}
	if l.defaultName == "" {
		return zero, ErrNoDefault.WithMsgf("no default extension for %s", l.capability)
	}
	if inst, ok := l.instances[l.defaultName]; ok {
		return inst, nil
	}

	inst, err := l.factories[l.defaultName]()
	if err != nil {
		return zero, ErrCreateFailed.WithMsgf("create default extension %s/%s failed", l.capability, l.defaultName).Wrap(err)
	}
	l.defaultInst = &inst
	return inst, nil
}

// Unload deactivates name, closing the instance when it is an io.Closer
func (l *Loader[T]) Unload(name string) error {
	l.mu.Lock()
	inst, ok := l.instances[name]
	if ok {
		delete(l.instances, name)
		for i, n := range l.loaded {
			if n == name {
				l.loaded = append(l.loaded[:i], l.loaded[i+1:]...)
				break
			}
		}
	}
	l.mu.Unlock()

	if !ok {
		return nil
	}
	if closer, isCloser := any(inst).(io.Closer); isCloser {
		return closer.Close()
	}
	return nil
}

// Reset unloads every active instance; registrations stay
func (l *Loader[T]) Reset() {
	for _, name := range l.LoadedNames() {
		if err := l.Unload(name); err != nil {
			l.logger.WarnCtx(context.Background(), "Extension close failed",
				zap.String("capability", l.capability), zap.String("name", name), zap.Error(err))
		}
	}
}
