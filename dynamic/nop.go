package dynamic

import "context"

// NopDynamicConfiguration answers nothing; it is the default when no
// dynamic configuration is active.
type NopDynamicConfiguration struct{}

// NewNopDynamicConfiguration creates the no-op implementation
func NewNopDynamicConfiguration() *NopDynamicConfiguration {
	return &NopDynamicConfiguration{}
}

// GetProperty always misses
func (*NopDynamicConfiguration) GetProperty(string) (interface{}, bool) {
	return nil, false
}

// GetConfig always misses
func (*NopDynamicConfiguration) GetConfig(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

// AddListener is a no-op
func (*NopDynamicConfiguration) AddListener(string, ConfigurationListener) {}

// RemoveListener is a no-op
func (*NopDynamicConfiguration) RemoveListener(string, ConfigurationListener) {}

// Close is a no-op
func (*NopDynamicConfiguration) Close() error {
	return nil
}
