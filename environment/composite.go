package environment

import (
	"context"
	"strings"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/dynamic"
	"go.uber.org/zap"
)

// StartupCompositeConf returns the cached startup view for (prefix, id).
// Precedence: system, app external, external, properties file.
func (e *Environment) StartupCompositeConf(prefix, id string) *config.CompositeConfiguration {
	return e.startup.getOrCreate(prefix, id)
}

func (e *Environment) buildStartupComposite(prefix, id string) *config.CompositeConfiguration {
	return config.NewCompositeConfiguration(
		e.SystemConf(prefix, id),
		e.AppExternalConfiguration(prefix, id),
		e.ExternalConfiguration(prefix, id),
		e.PropertiesConf(prefix, id),
	)
}

// RuntimeCompositeConf builds the view of one invocation. It is never cached.
// Precedence: dynamic configuration scoped to the call, call metadata,
// system properties, properties file.
func (e *Environment) RuntimeCompositeConf(callCtx CallContext, method string) *config.CompositeConfiguration {
	composite := config.NewCompositeConfiguration(
		dynamic.NewWrapper(callCtx.ApplicationName(), callCtx.ServiceKey(), method, e.DynamicConfiguration()),
		callCtx.ToConfiguration(),
		e.SystemConf("", ""),
		e.PropertiesConf("", ""),
	)
	e.metrics.recordComposite(context.Background(), KindRuntime)
	return composite
}

// ResolveExternal orders the external origins against the properties file
// according to IsConfigCenterFirst: above it when true, below it otherwise.
func (e *Environment) ResolveExternal(prefix, id string) *config.CompositeConfiguration {
	properties := e.PropertiesConf(prefix, id)
	composite := config.NewCompositeConfiguration(
		e.AppExternalConfiguration(prefix, id),
		e.ExternalConfiguration(prefix, id),
	)
	if e.IsConfigCenterFirst() {
		composite.AddConfiguration(properties)
	} else {
		composite.AddConfigurationFirst(properties)
	}
	return composite
}

// DynamicConfiguration returns the active dynamic configuration: the first
// loaded implementation, else the loader default, else a no-op.
func (e *Environment) DynamicConfiguration() dynamic.DynamicConfiguration {
	loaded := e.dynamicLoader.LoadedInstances()
	if len(loaded) == 0 {
		def, err := e.dynamicLoader.DefaultExtension()
		if err != nil {
			e.logger.DebugCtx(context.Background(), "no default dynamic configuration, using nop", zap.Error(err))
			return dynamic.NewNopDynamicConfiguration()
		}
		return def
	}

	if len(loaded) > 1 {
		e.warnMultipleDynamic()
	}
	return loaded[0]
}

// warnMultipleDynamic logs once per distinct candidate set
func (e *Environment) warnMultipleDynamic() {
	names := e.dynamicLoader.LoadedNames()
	candidates := strings.Join(names, ",")

	e.warnedMu.Lock()
	defer e.warnedMu.Unlock()
	if e.warnedCandidate == candidates {
		return
	}
	e.warnedCandidate = candidates
	e.logger.WarnCtx(context.Background(), "multiple dynamic configurations loaded, using the first",
		zap.Strings("candidates", names), zap.String("selected", names[0]))
}
