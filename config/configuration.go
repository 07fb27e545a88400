// Package config holds the configuration origins consulted by the environment:
// properties files, system properties, process environment, in-memory maps and
// ordered composites of those.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Configuration is a single origin of configuration values.
// A miss is reported by ok == false and is never an error.
type Configuration interface {
	GetProperty(key string) (value interface{}, ok bool)
}

// ConfigurationFunc adapts a plain lookup function to Configuration
type ConfigurationFunc func(key string) (interface{}, bool)

// GetProperty implements Configuration
func (f ConfigurationFunc) GetProperty(key string) (interface{}, bool) {
	return f(key)
}

// ContainsKey reports whether c answers key
func ContainsKey(c Configuration, key string) bool {
	_, ok := c.GetProperty(key)
	return ok
}

// GetString returns the value of key formatted as a string, or def on a miss
func GetString(c Configuration, key, def string) string {
	v, ok := c.GetProperty(key)
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// GetInt returns the value of key as an int, or def on a miss or parse failure
func GetInt(c Configuration, key string, def int) int {
	v, ok := c.GetProperty(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}

// GetBool returns the value of key as a bool, or def on a miss or parse failure
func GetBool(c Configuration, key string, def bool) bool {
	v, ok := c.GetProperty(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return def
}

// IsBlank reports whether s is empty or whitespace only
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Scope is the (prefix, id) pair every prefixed origin is constructed from.
//
// Lookup order for key k:
//
//	prefix + id + "." + k   (id not blank)
//	prefix + k              (prefix not blank)
//	k
type Scope struct {
	prefix string
	id     string
}

// NewScope normalizes prefix to end with "."
func NewScope(prefix, id string) Scope {
	prefix = strings.TrimSpace(prefix)
	if prefix != "" && !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	return Scope{prefix: prefix, id: strings.TrimSpace(id)}
}

// Prefix returns the normalized prefix
func (s Scope) Prefix() string {
	return s.prefix
}

// ID returns the id part
func (s Scope) ID() string {
	return s.id
}

// Lookup resolves key through get in scope order
func (s Scope) Lookup(key string, get func(string) (interface{}, bool)) (interface{}, bool) {
	if s.id != "" {
		if v, ok := get(s.prefix + s.id + "." + key); ok {
			return v, true
		}
	}
	if s.prefix != "" {
		if v, ok := get(s.prefix + key); ok {
			return v, true
		}
	}
	return get(key)
}
