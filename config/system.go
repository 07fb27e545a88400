package config

import (
	"fmt"
	"strings"
)

// SystemProperties is the process-wide property table (the equivalent of
// -Dkey=value JVM flags). One instance is owned by the environment.
type SystemProperties = PropertyMap

// NewSystemProperties creates an empty system property table
func NewSystemProperties() *SystemProperties {
	return NewPropertyMap(nil)
}

// ParseSystemProperty parses "key=value"; a bare "key" maps to "true"
func ParseSystemProperty(raw string) (string, string, error) {
	key, value, found := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("invalid system property %q: empty key", raw)
	}
	if !found {
		return key, "true", nil
	}
	return key, value, nil
}

// SystemConfiguration reads the system property table through a Scope
type SystemConfiguration struct {
	scope Scope
	props *SystemProperties
}

// NewSystemConfiguration creates a system origin
func NewSystemConfiguration(prefix, id string, props *SystemProperties) *SystemConfiguration {
	if props == nil {
		props = NewSystemProperties()
	}
	return &SystemConfiguration{scope: NewScope(prefix, id), props: props}
}

// GetProperty implements Configuration
func (c *SystemConfiguration) GetProperty(key string) (interface{}, bool) {
	return c.scope.Lookup(key, c.props.lookup)
}
