package config

// InmemoryConfiguration reads a shared PropertyMap through a Scope.
// Backs the external and app-external origins and call metadata.
type InmemoryConfiguration struct {
	scope Scope
	props *PropertyMap
}

// NewInmemoryConfiguration creates an origin over props.
// A nil props starts an empty private map.
func NewInmemoryConfiguration(prefix, id string, props *PropertyMap) *InmemoryConfiguration {
	if props == nil {
		props = NewPropertyMap(nil)
	}
	return &InmemoryConfiguration{scope: NewScope(prefix, id), props: props}
}

// GetProperty implements Configuration
func (c *InmemoryConfiguration) GetProperty(key string) (interface{}, bool) {
	return c.scope.Lookup(key, c.props.lookup)
}

// AddProperty sets a single entry on the backing map
func (c *InmemoryConfiguration) AddProperty(key, value string) {
	c.props.Put(key, value)
}

// AddProperties merges entries into the backing map
func (c *InmemoryConfiguration) AddProperties(entries map[string]string) {
	c.props.PutAll(entries)
}

// Properties returns the backing map
func (c *InmemoryConfiguration) Properties() *PropertyMap {
	return c.props
}
