package environment

import (
	"context"

	"github.com/KOMKZ/go-yogan-confenv/configcenter"
	"go.uber.org/zap"
)

// SetExternalConfiguration replaces the global external map with a copy of m
// and initializes the config center.
func (e *Environment) SetExternalConfiguration(ctx context.Context, m map[string]string) error {
	return e.setExternal(ctx, false, m)
}

// SetAppExternalConfiguration replaces the application external map with a
// copy of m and initializes the config center.
func (e *Environment) SetAppExternalConfiguration(ctx context.Context, m map[string]string) error {
	return e.setExternal(ctx, true, m)
}

func (e *Environment) setExternal(ctx context.Context, app bool, m map[string]string) error {
	e.setMu.Lock()
	defer e.setMu.Unlock()

	e.externals.replace(app, m)

	cc := e.configCenter.Load()
	if cc == nil {
		cc = configcenter.NewConfig()
		cc.Bind(e, e.dynamicLoader, e.ccLogger)
		e.configCenter.Store(cc)
	}
	if err := cc.Init(ctx); err != nil {
		e.logger.ErrorCtx(ctx, "config center initialization failed",
			zap.String("protocol", cc.Protocol), zap.Error(err))
		return ErrConfigCenter.Wrap(err)
	}
	return nil
}

// UpdateExternalConfigurationMap merges m into the current global external map
func (e *Environment) UpdateExternalConfigurationMap(m map[string]string) {
	e.externals.update(false, m)
}

// UpdateAppExternalConfigurationMap merges m into the current application external map
func (e *Environment) UpdateAppExternalConfigurationMap(m map[string]string) {
	e.externals.update(true, m)
}

// ExternalConfigurationMap returns a copy of the global external map
func (e *Environment) ExternalConfigurationMap() map[string]string {
	return e.externals.snapshot(false)
}

// AppExternalConfigurationMap returns a copy of the application external map
func (e *Environment) AppExternalConfigurationMap() map[string]string {
	return e.externals.snapshot(true)
}

// SetConfigCenter installs cc and binds it to this environment
func (e *Environment) SetConfigCenter(cc *configcenter.Config) {
	e.setMu.Lock()
	defer e.setMu.Unlock()
	if cc != nil {
		cc.Bind(e, e.dynamicLoader, e.ccLogger)
	}
	e.configCenter.Store(cc)
}

// ConfigCenter returns the config center, nil before the first setter call
func (e *Environment) ConfigCenter() *configcenter.Config {
	return e.configCenter.Load()
}

// IsConfigCenterFirst reports whether external configuration overrides the properties file
func (e *Environment) IsConfigCenterFirst() bool {
	return e.configCenterFirst.Load()
}

// SetConfigCenterFirst sets the config-center-first policy
func (e *Environment) SetConfigCenterFirst(first bool) {
	e.configCenterFirst.Store(first)
}
