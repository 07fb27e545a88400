package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Loader merges several ConfigSource by priority into one flat map
type Loader struct {
	mu           sync.RWMutex
	sources      []ConfigSource
	mergedConfig map[string]interface{}
	v            *viper.Viper // nested view for Unmarshal
	loadedFiles  []string
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		mergedConfig: make(map[string]interface{}),
		v:            viper.New(),
	}
}

// AddSource adds a data source
func (l *Loader) AddSource(source ConfigSource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources = append(l.sources, source)
}

// Load loads every source, low priority first, later sources override earlier ones
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]interface{})
	var files []string
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok && len(data) > 0 {
			files = append(files, fs.Path())
		}
		for k, v := range data {
			merged[k] = v
		}
	}

	l.mergedConfig = merged
	l.loadedFiles = files
	l.v = viper.New()
	for k, v := range merged {
		l.v.Set(k, v)
	}
	return nil
}

// Lookup returns the merged value of key.
// Keys read through viper are lower-cased, so a case-insensitive match is tried last.
func (l *Loader) Lookup(key string) (interface{}, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if v, ok := l.mergedConfig[key]; ok {
		return v, true
	}
	v, ok := l.mergedConfig[strings.ToLower(key)]
	return v, ok
}

// Unmarshal decodes the section at key into out (the whole config when key is empty)
func (l *Loader) Unmarshal(key string, out interface{}) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if key == "" {
		return l.v.Unmarshal(out)
	}
	return l.v.UnmarshalKey(key, out)
}

// LoadedFiles returns the files that contributed at least one key
func (l *Loader) LoadedFiles() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.loadedFiles...)
}
