package config

import (
	"os"
	"strings"
)

// EnvironmentConfiguration reads process environment variables through a Scope.
// Each candidate key is tried verbatim, then in env form
// (dubbo.protocol.port -> DUBBO_PROTOCOL_PORT).
type EnvironmentConfiguration struct {
	scope     Scope
	lookupEnv func(string) (string, bool)
}

// NewEnvironmentConfiguration creates an environment origin backed by os.LookupEnv
func NewEnvironmentConfiguration(prefix, id string) *EnvironmentConfiguration {
	return NewEnvironmentConfigurationWith(prefix, id, os.LookupEnv)
}

// NewEnvironmentConfigurationWith uses lookupEnv instead of os.LookupEnv
func NewEnvironmentConfigurationWith(prefix, id string, lookupEnv func(string) (string, bool)) *EnvironmentConfiguration {
	return &EnvironmentConfiguration{scope: NewScope(prefix, id), lookupEnv: lookupEnv}
}

// GetProperty implements Configuration
func (c *EnvironmentConfiguration) GetProperty(key string) (interface{}, bool) {
	return c.scope.Lookup(key, c.get)
}

func (c *EnvironmentConfiguration) get(key string) (interface{}, bool) {
	if v, ok := c.lookupEnv(key); ok {
		return v, true
	}
	if v, ok := c.lookupEnv(ToEnvKey(key)); ok {
		return v, true
	}
	return nil, false
}

// ToEnvKey converts a dotted configuration key to its environment variable form
func ToEnvKey(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return strings.ToUpper(r.Replace(key))
}
