package dynamic

import (
	"github.com/KOMKZ/go-yogan-confenv/config"
)

// Wrapper scopes a dynamic configuration to one invocation.
//
// Lookup order for key k:
//
//	service.method.k   (method not blank)
//	service.k          (service not blank)
//	application.k      (application not blank)
//	k
type Wrapper struct {
	application string
	service     string
	method      string
	delegate    config.Configuration
}

// NewWrapper creates a scoped view over delegate
func NewWrapper(application, service, method string, delegate config.Configuration) *Wrapper {
	if delegate == nil {
		delegate = NewNopDynamicConfiguration()
	}
	return &Wrapper{application: application, service: service, method: method, delegate: delegate}
}

// GetProperty implements config.Configuration
func (w *Wrapper) GetProperty(key string) (interface{}, bool) {
	if !config.IsBlank(w.service) {
		if !config.IsBlank(w.method) {
			if v, ok := w.delegate.GetProperty(w.service + "." + w.method + "." + key); ok {
				return v, true
			}
		}
		if v, ok := w.delegate.GetProperty(w.service + "." + key); ok {
			return v, true
		}
	}
	if !config.IsBlank(w.application) {
		if v, ok := w.delegate.GetProperty(w.application + "." + key); ok {
			return v, true
		}
	}
	return w.delegate.GetProperty(key)
}

// Delegate returns the wrapped configuration
func (w *Wrapper) Delegate() config.Configuration {
	return w.delegate
}
