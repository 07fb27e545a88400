package config

import "sync"

// CompositeConfiguration queries its members in order; the first
// present value wins and an empty composite always misses.
type CompositeConfiguration struct {
	mu      sync.RWMutex
	configs []Configuration
}

// NewCompositeConfiguration creates a composite with configs in precedence order
func NewCompositeConfiguration(configs ...Configuration) *CompositeConfiguration {
	c := &CompositeConfiguration{}
	for _, cfg := range configs {
		c.AddConfiguration(cfg)
	}
	return c
}

// AddConfiguration appends cfg with the lowest precedence so far
func (c *CompositeConfiguration) AddConfiguration(cfg Configuration) {
	if cfg == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs = append(c.configs, cfg)
}

// AddConfigurationFirst inserts cfg with the highest precedence
func (c *CompositeConfiguration) AddConfigurationFirst(cfg Configuration) {
	if cfg == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs = append([]Configuration{cfg}, c.configs...)
}

// Len returns the number of members
func (c *CompositeConfiguration) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.configs)
}

// Configurations returns the members in precedence order
func (c *CompositeConfiguration) Configurations() []Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Configuration, len(c.configs))
	copy(out, c.configs)
	return out
}

// GetProperty implements Configuration
func (c *CompositeConfiguration) GetProperty(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cfg := range c.configs {
		if v, ok := cfg.GetProperty(key); ok {
			return v, true
		}
	}
	return nil, false
}
