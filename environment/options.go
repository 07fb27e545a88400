package environment

import (
	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/dynamic"
	"github.com/KOMKZ/go-yogan-confenv/logger"
	"go.opentelemetry.io/otel/metric"
)

// OriginFactory builds a configuration origin for (prefix, id)
type OriginFactory func(prefix, id string) config.Configuration

// Option configures an Environment
type Option func(*options)

type options struct {
	logger         *logger.CtxZapLogger
	meter          metric.Meter
	dynamicLoader  *dynamic.Loader
	systemProps    *config.SystemProperties
	propertiesFile *config.PropertiesFile

	propertiesFactory  OriginFactory
	systemFactory      OriginFactory
	environmentFactory OriginFactory
}

// WithLogger sets the logger (default: module "confenv")
func WithLogger(log *logger.CtxZapLogger) Option {
	return func(o *options) { o.logger = log }
}

// WithMeter sets the meter used for cache metrics (default: global provider)
func WithMeter(meter metric.Meter) Option {
	return func(o *options) { o.meter = meter }
}

// WithDynamicLoader sets the dynamic configuration loader (default: dynamic.NewLoader)
func WithDynamicLoader(l *dynamic.Loader) Option {
	return func(o *options) { o.dynamicLoader = l }
}

// WithSystemProperties sets the system property table
func WithSystemProperties(props *config.SystemProperties) Option {
	return func(o *options) { o.systemProps = props }
}

// WithPropertiesFile sets the properties file behind the properties origin
func WithPropertiesFile(file *config.PropertiesFile) Option {
	return func(o *options) { o.propertiesFile = file }
}

// WithPropertiesFactory replaces the properties origin factory
func WithPropertiesFactory(f OriginFactory) Option {
	return func(o *options) { o.propertiesFactory = f }
}

// WithSystemFactory replaces the system origin factory
func WithSystemFactory(f OriginFactory) Option {
	return func(o *options) { o.systemFactory = f }
}

// WithEnvironmentFactory replaces the environment variable origin factory
func WithEnvironmentFactory(f OriginFactory) Option {
	return func(o *options) { o.environmentFactory = f }
}
