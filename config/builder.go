package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultPropertiesFile is loaded when no file is configured
const DefaultPropertiesFile = "dubbo.properties"

// PropertiesFileEnv and PropertiesFileKey override the properties file location.
// ProfileKey selects the <base>-<profile> overlay.
const (
	PropertiesFileEnv = "DUBBO_PROPERTIES_FILE"
	PropertiesFileKey = "dubbo.properties.file"
	ProfileKey        = "dubbo.profile"
)

// LoaderBuilder builds the Loader behind the properties origin
type LoaderBuilder struct {
	file      string
	profile   string
	envPrefix string
}

// NewLoaderBuilder creates a builder for the default properties file
func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{file: DefaultPropertiesFile}
}

// WithFile sets the base properties file
func (b *LoaderBuilder) WithFile(path string) *LoaderBuilder {
	if path != "" {
		b.file = path
	}
	return b
}

// WithProfile adds <base>-<profile><ext> on top of the base file
func (b *LoaderBuilder) WithProfile(profile string) *LoaderBuilder {
	b.profile = profile
	return b
}

// WithEnvPrefix overlays PREFIX_* environment variables
func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// Build creates and loads the loader
func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	loader.AddSource(NewFileSource(b.file, 10))

	if b.profile != "" {
		ext := filepath.Ext(b.file)
		loader.AddSource(NewFileSource(strings.TrimSuffix(b.file, ext)+"-"+b.profile+ext, 20))
	}

	if b.envPrefix != "" {
		loader.AddSource(NewEnvSource(b.envPrefix, 50))
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// ResolvePropertiesFile picks the properties file: system property, then
// DUBBO_PROPERTIES_FILE, then the default
func ResolvePropertiesFile(system *SystemProperties) string {
	if system != nil {
		if v, ok := system.Get(PropertiesFileKey); ok && !IsBlank(v) {
			return v
		}
	}
	if v := os.Getenv(PropertiesFileEnv); v != "" {
		return v
	}
	return DefaultPropertiesFile
}

// ResolveProfile returns the active profile: the dubbo.profile system
// property, then APP_ENV, then ENV. Empty when none is set.
func ResolveProfile(system *SystemProperties) string {
	if system != nil {
		if v, ok := system.Get(ProfileKey); ok && !IsBlank(v) {
			return strings.TrimSpace(v)
		}
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return os.Getenv("ENV")
}
