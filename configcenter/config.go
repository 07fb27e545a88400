// Package configcenter describes the remote configuration center and pulls
// the external configuration files it holds into the environment.
package configcenter

import (
	"strings"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/dynamic"
	"github.com/KOMKZ/go-yogan-confenv/logger"
	"github.com/KOMKZ/go-yogan-confenv/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults
const (
	DefaultProtocol   = dynamic.ProtocolNop
	DefaultNamespace  = "dubbo"
	DefaultGroup      = dynamic.DefaultGroup
	DefaultConfigFile = "dubbo.properties"
	DefaultTimeout    = 3 * time.Second
)

// ExternalUpdater receives the parsed configuration files
type ExternalUpdater interface {
	UpdateExternalConfigurationMap(m map[string]string)
	UpdateAppExternalConfigurationMap(m map[string]string)
}

// Config config center settings
type Config struct {
	Protocol      string        `mapstructure:"protocol"`
	Address       string        `mapstructure:"address"`
	Cluster       string        `mapstructure:"cluster"`
	Namespace     string        `mapstructure:"namespace"`
	Group         string        `mapstructure:"group"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Check         bool          `mapstructure:"check"`
	AppName       string        `mapstructure:"app-name"`
	ConfigFile    string        `mapstructure:"config-file"`
	AppConfigFile string        `mapstructure:"app-config-file"`

	mu          sync.Mutex
	initialized bool
	updater     ExternalUpdater
	loader      *dynamic.Loader
	active      dynamic.DynamicConfiguration
	logger      *logger.CtxZapLogger
}

// NewConfig creates a config with defaults (protocol "nop", check enabled)
func NewConfig() *Config {
	return &Config{
		Protocol:   DefaultProtocol,
		Namespace:  DefaultNamespace,
		Group:      DefaultGroup,
		Timeout:    DefaultTimeout,
		Check:      true,
		ConfigFile: DefaultConfigFile,
	}
}

// LoadConfig decodes the section at key of loader over the defaults
func LoadConfig(loader *config.Loader, key string) (*Config, error) {
	c := NewConfig()
	if loader == nil {
		return c, nil
	}
	if err := loader.Unmarshal(key, c); err != nil {
		return nil, ErrInvalidConfig.WithMsgf("decode %s failed", key).Wrap(err)
	}
	c.ApplyDefaults()
	return c, nil
}

// ApplyDefaults fills empty fields; Check is left as is
func (c *Config) ApplyDefaults() {
	if c.Protocol == "" {
		c.Protocol = DefaultProtocol
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.Group == "" {
		c.Group = DefaultGroup
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigFile
	}
}

// Validate checks the config
func (c *Config) Validate() error {
	remote := c.Protocol != "" && c.Protocol != DefaultProtocol
	return validator.Convert(ErrInvalidConfig, validation.ValidateStruct(c,
		validation.Field(&c.Address, validation.When(remote && c.Protocol != dynamic.ProtocolMemory, validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ConfigFile, validation.When(remote, validation.Required)),
		validation.Field(&c.Group, validation.By(noSlash)),
		validation.Field(&c.Namespace, validation.By(noSlash)),
	))
}

func noSlash(value interface{}) error {
	s, _ := value.(string)
	if strings.Contains(strings.Trim(s, "/"), "/") {
		return validation.NewError("validation_no_slash", "must not contain '/'")
	}
	return nil
}

// Settings returns the connection settings of the dynamic configuration
func (c *Config) Settings() dynamic.Settings {
	return dynamic.Settings{
		Address:  c.Address,
		Root:     c.Namespace,
		Group:    c.Group,
		Username: c.Username,
		Password: c.Password,
		Timeout:  c.Timeout,
	}
}

// Bind attaches the collaborators used by Init
func (c *Config) Bind(updater ExternalUpdater, loader *dynamic.Loader, log *logger.CtxZapLogger) {
	if log == nil {
		log = logger.GetLogger("configcenter")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updater = updater
	c.loader = loader
	c.logger = log
}

// IsInitialized reports whether Init completed
func (c *Config) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Active returns the dynamic configuration activated by Init, nil for "nop"
func (c *Config) Active() dynamic.DynamicConfiguration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
