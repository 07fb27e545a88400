package environment

import (
	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/dynamic"
	"github.com/KOMKZ/go-yogan-confenv/logger"
	"github.com/samber/do/v2"
)

// ProvideEnvironment creates the Environment provider.
// A *logger.CtxZapLogger, *config.SystemProperties or *dynamic.Loader
// already registered in the injector is used in place of the default;
// opts are applied after them.
//
// Usage:
//
//	do.Provide(injector, environment.ProvideEnvironment())
//	env := do.MustInvoke[*environment.Environment](injector)
func ProvideEnvironment(opts ...Option) func(do.Injector) (*Environment, error) {
	return func(i do.Injector) (*Environment, error) {
		var injected []Option
		if log, err := do.Invoke[*logger.CtxZapLogger](i); err == nil {
			injected = append(injected, WithLogger(log))
		}
		if props, err := do.Invoke[*config.SystemProperties](i); err == nil {
			injected = append(injected, WithSystemProperties(props))
		}
		if loader, err := do.Invoke[*dynamic.Loader](i); err == nil {
			injected = append(injected, WithDynamicLoader(loader))
		}
		return New(append(injected, opts...)...), nil
	}
}

// ProvideEnvironmentValue registers an already created Environment
func ProvideEnvironmentValue(env *Environment) func(do.Injector) (*Environment, error) {
	return func(do.Injector) (*Environment, error) {
		return env, nil
	}
}
