package config

import (
	"os"
	"strings"
)

// EnvSource loads prefixed environment variables into the properties loader.
// DUBBO_PROTOCOL_PORT with prefix DUBBO becomes dubbo.protocol.port; the
// prefix itself is kept as the first key segment.
type EnvSource struct {
	prefix   string
	priority int
	environ  func() []string
}

// NewEnvSource creates an environment variable source
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: strings.ToUpper(prefix), priority: priority, environ: os.Environ}
}

// Name of the source
func (s *EnvSource) Name() string {
	return "env:" + s.prefix
}

// Priority of the source
func (s *EnvSource) Priority() int {
	return s.priority
}

// Load scans the environment for variables starting with PREFIX_
func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	for _, env := range s.environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		configKey := strings.ToLower(strings.ReplaceAll(key, "_", "."))
		result[configKey] = value
	}
	return result, nil
}
