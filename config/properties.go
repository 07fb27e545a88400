package config

import (
	"sync"
)

// PropertiesFile lazily loads the properties file once and serves lookups from it.
// A load failure is kept in Err and the file then answers nothing.
type PropertiesFile struct {
	once    sync.Once
	builder *LoaderBuilder
	loader  *Loader
	err     error
}

// NewPropertiesFile defers building loader until the first lookup
func NewPropertiesFile(builder *LoaderBuilder) *PropertiesFile {
	if builder == nil {
		builder = NewLoaderBuilder()
	}
	return &PropertiesFile{builder: builder}
}

// NewPropertiesFileFromLoader wraps an already loaded loader
func NewPropertiesFileFromLoader(loader *Loader) *PropertiesFile {
	f := &PropertiesFile{loader: loader}
	f.once.Do(func() {})
	return f
}

func (f *PropertiesFile) load() {
	f.once.Do(func() {
		f.loader, f.err = f.builder.Build()
	})
}

// Err returns the load error, if any
func (f *PropertiesFile) Err() error {
	f.load()
	return f.err
}

// Loader returns the underlying loader, nil when loading failed
func (f *PropertiesFile) Loader() *Loader {
	f.load()
	return f.loader
}

func (f *PropertiesFile) lookup(key string) (interface{}, bool) {
	f.load()
	if f.loader == nil {
		return nil, false
	}
	return f.loader.Lookup(key)
}

// PropertiesConfiguration reads the properties file through a Scope
type PropertiesConfiguration struct {
	scope Scope
	file  *PropertiesFile
}

// NewPropertiesConfiguration creates a properties origin
func NewPropertiesConfiguration(prefix, id string, file *PropertiesFile) *PropertiesConfiguration {
	if file == nil {
		file = NewPropertiesFile(nil)
	}
	return &PropertiesConfiguration{scope: NewScope(prefix, id), file: file}
}

// GetProperty implements Configuration
func (c *PropertiesConfiguration) GetProperty(key string) (interface{}, bool) {
	return c.scope.Lookup(key, c.file.lookup)
}
