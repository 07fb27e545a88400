package configcenter

import (
	"context"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/dynamic"
	"go.uber.org/zap"
)

// Init activates the configured protocol and pushes the external
// configuration files into the bound environment. Once it has succeeded
// further calls do nothing. With Check disabled failures are logged and
// Init reports success.
func (c *Config) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if c.logger == nil || c.updater == nil || c.loader == nil {
		return ErrNotBound
	}

	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Protocol == DefaultProtocol {
		c.initialized = true
		return nil
	}

	if err := c.load(ctx); err != nil {
		if c.Check {
			return err
		}
		c.logger.WarnCtx(ctx, "config center unavailable, continuing without it",
			zap.String("protocol", c.Protocol), zap.String("address", c.Address), zap.Error(err))
	}
	c.initialized = true
	return nil
}

func (c *Config) load(ctx context.Context) error {
	dyn, err := dynamic.Activate(ctx, c.loader, c.Protocol, c.Settings(), c.logger)
	if err != nil {
		return err
	}
	c.active = dyn

	if w, ok := dyn.(dynamic.Watcher); ok {
		// outlives the triggering call; Close on the loaded instance stops it
		if err := w.Watch(context.WithoutCancel(ctx)); err != nil {
			return ErrWatch.WithMsgf("watch %s config center failed", c.Protocol).Wrap(err)
		}
	}

	global, err := c.fetch(ctx, dyn, c.ConfigFile, c.Group)
	if err != nil {
		return err
	}

	var app map[string]string
	if c.AppName != "" {
		file := c.AppConfigFile
		if file == "" {
			file = c.ConfigFile
		}
		if app, err = c.fetch(ctx, dyn, file, c.AppName); err != nil {
			return err
		}
	}

	// Nothing is pushed until every file parsed
	c.updater.UpdateExternalConfigurationMap(global)
	if app != nil {
		c.updater.UpdateAppExternalConfigurationMap(app)
	}

	c.logger.InfoCtx(ctx, "config center initialized",
		zap.String("protocol", c.Protocol),
		zap.Int("external", len(global)),
		zap.Int("app_external", len(app)))
	return nil
}

func (c *Config) fetch(ctx context.Context, dyn dynamic.DynamicConfiguration, key, group string) (map[string]string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	content, ok, err := dyn.GetConfig(fetchCtx, key, group)
	if err != nil {
		return nil, ErrFetch.WithMsgf("fetch %s from group %s failed", key, group).Wrap(err)
	}
	if !ok {
		c.logger.DebugCtx(ctx, "external configuration file not found",
			zap.String("key", key), zap.String("group", group))
		return map[string]string{}, nil
	}

	props, err := config.ParseProperties(content)
	if err != nil {
		return nil, ErrParse.WithMsgf("parse %s from group %s failed", key, group).Wrap(err)
	}
	return props, nil
}
