package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// FileSource file configuration source.
// .properties files are read with magiconair/properties so key case is
// preserved; every other format goes through viper.
type FileSource struct {
	path     string
	priority int
}

// NewFileSource creates a file source
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

// Name of the source
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Priority of the source
func (s *FileSource) Priority() int {
	return s.priority
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// Load reads the file; a missing file is an empty source, not an error
func (s *FileSource) Load() (map[string]interface{}, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, fmt.Errorf("stat config file %s: %w", s.path, err)
	}

	if strings.EqualFold(filepath.Ext(s.path), ".properties") {
		p, err := properties.LoadFile(s.path, properties.UTF8)
		if err != nil {
			return nil, fmt.Errorf("read properties file %s: %w", s.path, err)
		}
		return PropertiesToMap(p), nil
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}
	return flattenMap("", v.AllSettings()), nil
}

// ParseProperties parses properties content (key=value lines) into a string map
func ParseProperties(content string) (map[string]string, error) {
	p, err := properties.LoadString(content)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return p.Map(), nil
}

// PropertiesToMap converts parsed properties to a flat source map
func PropertiesToMap(p *properties.Properties) map[string]interface{} {
	result := make(map[string]interface{}, p.Len())
	for k, v := range p.Map() {
		result[k] = v
	}
	return result
}

// flattenMap flattens nested maps into dot separated keys
// e.g. {"dubbo": {"protocol": {"port": 20880}}} -> {"dubbo.protocol.port": 20880}
func flattenMap(prefix string, data map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]interface{}); ok {
			for k, v := range flattenMap(fullKey, nested) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}

	return result
}
