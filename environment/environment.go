// Package environment resolves configuration across every origin of a node:
// the properties file, environment variables, system properties, the
// external maps pushed by the config center and the active dynamic
// configuration.
//
// Origins are cached per normalized (prefix, id). The startup composite is
// cached the same way; the runtime composite is rebuilt for every call.
package environment

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/configcenter"
	"github.com/KOMKZ/go-yogan-confenv/dynamic"
	"github.com/KOMKZ/go-yogan-confenv/logger"
	"go.uber.org/zap"
)

// CallContext is the metadata of one invocation
type CallContext interface {
	Parameter(key string) (string, bool)
	ApplicationName() string
	ServiceKey() string
	ToConfiguration() config.Configuration
}

// Environment is the configuration environment of one process
type Environment struct {
	logger        *logger.CtxZapLogger
	ccLogger      *logger.CtxZapLogger
	metrics       *Metrics
	system        *config.SystemProperties
	dynamicLoader *dynamic.Loader

	properties  *originCache[config.Configuration]
	systems     *originCache[config.Configuration]
	environment *originCache[config.Configuration]
	external    *originCache[*config.InmemoryConfiguration]
	appExternal *originCache[*config.InmemoryConfiguration]
	startup     *originCache[*config.CompositeConfiguration]

	externals *externalStore

	// setMu serializes the external setters and config center creation
	setMu             sync.Mutex
	configCenter      atomic.Pointer[configcenter.Config]
	configCenterFirst atomic.Bool

	warnedMu        sync.Mutex
	warnedCandidate string
}

// New creates an environment
func New(opts ...Option) *Environment {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	ccLogger := o.logger
	if o.logger == nil {
		o.logger = logger.GetLogger("confenv")
		ccLogger = logger.GetLogger("configcenter")
	}
	if o.systemProps == nil {
		o.systemProps = config.NewSystemProperties()
	}
	if o.propertiesFile == nil {
		o.propertiesFile = config.NewPropertiesFile(
			config.NewLoaderBuilder().
				WithFile(config.ResolvePropertiesFile(o.systemProps)).
				WithProfile(config.ResolveProfile(o.systemProps)))
	}
	if o.dynamicLoader == nil {
		o.dynamicLoader = dynamic.NewLoader(o.logger)
	}

	e := &Environment{
		logger:        o.logger,
		ccLogger:      ccLogger,
		metrics:       NewMetrics(),
		system:        o.systemProps,
		dynamicLoader: o.dynamicLoader,
		externals:     newExternalStore(),
	}
	e.configCenterFirst.Store(true)

	if err := e.metrics.RegisterMetrics(o.meter); err != nil {
		e.logger.WarnCtx(context.Background(), "register environment metrics failed", zap.Error(err))
	}

	propertiesFactory := o.propertiesFactory
	if propertiesFactory == nil {
		file := o.propertiesFile
		propertiesFactory = func(prefix, id string) config.Configuration {
			return config.NewPropertiesConfiguration(prefix, id, file)
		}
	}
	systemFactory := o.systemFactory
	if systemFactory == nil {
		systemFactory = func(prefix, id string) config.Configuration {
			return config.NewSystemConfiguration(prefix, id, e.system)
		}
	}
	environmentFactory := o.environmentFactory
	if environmentFactory == nil {
		environmentFactory = func(prefix, id string) config.Configuration {
			return config.NewEnvironmentConfiguration(prefix, id)
		}
	}

	e.properties = newOriginCache[config.Configuration](KindProperties, e.metrics, propertiesFactory)
	e.systems = newOriginCache[config.Configuration](KindSystem, e.metrics, systemFactory)
	e.environment = newOriginCache[config.Configuration](KindEnvironment, e.metrics, environmentFactory)
	e.external = newOriginCache(KindExternal, e.metrics, func(prefix, id string) *config.InmemoryConfiguration {
		return config.NewInmemoryConfiguration(prefix, id, e.externals.current(false))
	})
	e.appExternal = newOriginCache(KindAppExternal, e.metrics, func(prefix, id string) *config.InmemoryConfiguration {
		return config.NewInmemoryConfiguration(prefix, id, e.externals.current(true))
	})
	e.startup = newOriginCache(KindStartup, e.metrics, e.buildStartupComposite)
	return e
}

// PropertiesConf returns the properties file origin for (prefix, id)
func (e *Environment) PropertiesConf(prefix, id string) config.Configuration {
	return e.properties.getOrCreate(prefix, id)
}

// SystemConf returns the system property origin for (prefix, id)
func (e *Environment) SystemConf(prefix, id string) config.Configuration {
	return e.systems.getOrCreate(prefix, id)
}

// EnvironmentConf returns the environment variable origin for (prefix, id)
func (e *Environment) EnvironmentConf(prefix, id string) config.Configuration {
	return e.environment.getOrCreate(prefix, id)
}

// ExternalConfiguration returns the global external origin for (prefix, id)
func (e *Environment) ExternalConfiguration(prefix, id string) *config.InmemoryConfiguration {
	return e.external.getOrCreate(prefix, id)
}

// AppExternalConfiguration returns the application external origin for (prefix, id)
func (e *Environment) AppExternalConfiguration(prefix, id string) *config.InmemoryConfiguration {
	return e.appExternal.getOrCreate(prefix, id)
}

// SystemProperties returns the system property table
func (e *Environment) SystemProperties() *config.SystemProperties {
	return e.system
}

// SetSystemProperty sets a system property; existing system origins see it immediately
func (e *Environment) SetSystemProperty(key, value string) error {
	if config.IsBlank(key) {
		return ErrInvalidKey
	}
	e.system.Put(key, value)
	return nil
}

// DynamicLoader returns the loader of the dynamic configuration capability
func (e *Environment) DynamicLoader() *dynamic.Loader {
	return e.dynamicLoader
}

// Metrics returns the metrics provider
func (e *Environment) Metrics() *Metrics {
	return e.metrics
}
