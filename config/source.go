package config

// ConfigSource is a loadable input of the properties file loader.
// All sources (files, environment variables) implement this interface.
type ConfigSource interface {
	// Name of the source (for logs and debugging)
	Name() string

	// Priority, higher value overrides lower. Suggested values:
	//   - base properties file (dubbo.properties): 10
	//   - profile file (dubbo-dev.properties): 20
	//   - environment variables: 50
	Priority() int

	// Load returns a flat map with dot separated keys, such as "dubbo.protocol.port"
	Load() (map[string]interface{}, error)
}
