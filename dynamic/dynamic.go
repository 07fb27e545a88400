// Package dynamic provides the pluggable dynamic (remote) configuration
// capability: the interface, a no-op default, a scoping wrapper and the
// built-in memory, etcd, redis and consul implementations.
package dynamic

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-confenv/config"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Capability is the extension capability name
const Capability = "dynamic-configuration"

// Built-in protocol names
const (
	ProtocolNop    = "nop"
	ProtocolMemory = "memory"
	ProtocolEtcd   = "etcd"
	ProtocolRedis  = "redis"
	ProtocolConsul = "consul"
)

// DefaultGroup is used when no group is given
const DefaultGroup = "dubbo"

// DynamicConfiguration is a configuration origin backed by a possibly remote store.
// GetProperty answers from the default group; GetConfig reads any key of any group.
type DynamicConfiguration interface {
	config.Configuration

	// GetConfig reads the raw value stored under key in group
	GetConfig(ctx context.Context, key, group string) (string, bool, error)

	// AddListener registers l for changes of key in the default group
	AddListener(key string, l ConfigurationListener)

	// RemoveListener removes l
	RemoveListener(key string, l ConfigurationListener)

	// Close releases the connection
	Close() error
}

// Pinger is implemented by the remote implementations
type Pinger interface {
	Ping(ctx context.Context) error
}

// Watcher is implemented by stores that keep their snapshot current from
// remote change notifications. Watch returns once watching has started and
// is a no-op while a watch is running; Close stops it.
type Watcher interface {
	Watch(ctx context.Context) error
}

// ChangeType kind of change
type ChangeType int

const (
	ChangeAdded ChangeType = iota
	ChangeModified
	ChangeDeleted
)

// String returns the change type name
func (t ChangeType) String() string {
	switch t {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ConfigChangeEvent describes one changed key
type ConfigChangeEvent struct {
	Key   string
	Value string
	Type  ChangeType
}

// ConfigurationListener receives change events
type ConfigurationListener interface {
	Process(event ConfigChangeEvent)
}

// ListenerFunc adapts a function to ConfigurationListener.
// Function listeners cannot be removed individually.
type ListenerFunc func(event ConfigChangeEvent)

// Process implements ConfigurationListener
func (f ListenerFunc) Process(event ConfigChangeEvent) {
	f(event)
}

// Settings connection settings shared by the remote implementations
type Settings struct {
	Address  string // comma separated endpoints
	Root     string // key namespace, default "dubbo"
	Group    string // default group
	Username string
	Password string
	Timeout  time.Duration
}

// Endpoints splits Address
func (s Settings) Endpoints() []string {
	var out []string
	for _, part := range strings.Split(s.Address, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate requires at least one endpoint and a non-negative timeout
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.By(hasEndpoint)),
		validation.Field(&s.Timeout, validation.Min(time.Duration(0))),
	)
}

func hasEndpoint(value interface{}) error {
	addr, _ := value.(string)
	if len(Settings{Address: addr}.Endpoints()) == 0 {
		return errors.New("must contain at least one endpoint")
	}
	return nil
}

// withDefaults fills Root, Group and Timeout
func (s Settings) withDefaults() Settings {
	if s.Root == "" {
		s.Root = "dubbo"
	}
	if s.Group == "" {
		s.Group = DefaultGroup
	}
	if s.Timeout <= 0 {
		s.Timeout = 3 * time.Second
	}
	return s
}

// listenerSet listeners keyed by configuration key
type listenerSet struct {
	mu        sync.RWMutex
	listeners map[string][]ConfigurationListener
}

func newListenerSet() *listenerSet {
	return &listenerSet{listeners: make(map[string][]ConfigurationListener)}
}

func (s *listenerSet) add(key string, l ConfigurationListener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[key] = append(s.listeners[key], l)
}

func (s *listenerSet) remove(key string, l ConfigurationListener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ls := s.listeners[key]
	if !reflect.TypeOf(l).Comparable() {
		return
	}
	for i, existing := range ls {
		if reflect.TypeOf(existing).Comparable() && existing == l {
			s.listeners[key] = append(ls[:i], ls[i+1:]...)
			return
		}
	}
}

func (s *listenerSet) fire(event ConfigChangeEvent) {
	s.mu.RLock()
	ls := append([]ConfigurationListener(nil), s.listeners[event.Key]...)
	s.mu.RUnlock()

	for _, l := range ls {
		l.Process(event)
	}
}

// applyChange stores value in snapshot and notifies listeners
func applyChange(snapshot *config.PropertyMap, listeners *listenerSet, key, value string, deleted bool) {
	old, existed := snapshot.Get(key)
	switch {
	case deleted:
		if !existed {
			return
		}
		snapshot.Remove(key)
		listeners.fire(ConfigChangeEvent{Key: key, Type: ChangeDeleted})
	case !existed:
		snapshot.Put(key, value)
		listeners.fire(ConfigChangeEvent{Key: key, Value: value, Type: ChangeAdded})
	case old != value:
		snapshot.Put(key, value)
		listeners.fire(ConfigChangeEvent{Key: key, Value: value, Type: ChangeModified})
	}
}

// diffSnapshot replaces snapshot content with fresh, firing events for every difference
func diffSnapshot(snapshot *config.PropertyMap, listeners *listenerSet, fresh map[string]string) {
	for key := range snapshot.Snapshot() {
		if _, ok := fresh[key]; !ok {
			applyChange(snapshot, listeners, key, "", true)
		}
	}
	for key, value := range fresh {
		applyChange(snapshot, listeners, key, value, false)
	}
}
