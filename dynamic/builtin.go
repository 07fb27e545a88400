package dynamic

import (
	"context"

	"github.com/KOMKZ/go-yogan-confenv/extension"
	"github.com/KOMKZ/go-yogan-confenv/logger"
)

// Loader is the extension loader of the dynamic configuration capability
type Loader = extension.Loader[DynamicConfiguration]

// Builder creates an implementation from connection settings
type Builder func(ctx context.Context, s Settings, log *logger.CtxZapLogger) (DynamicConfiguration, error)

var builders = map[string]Builder{
	ProtocolMemory: func(_ context.Context, s Settings, _ *logger.CtxZapLogger) (DynamicConfiguration, error) {
		return NewMemoryDynamicConfiguration(s.Group), nil
	},
	ProtocolEtcd: func(ctx context.Context, s Settings, log *logger.CtxZapLogger) (DynamicConfiguration, error) {
		return NewEtcdDynamicConfiguration(ctx, s, log)
	},
	ProtocolRedis: func(ctx context.Context, s Settings, log *logger.CtxZapLogger) (DynamicConfiguration, error) {
		return NewRedisDynamicConfiguration(ctx, s, log)
	},
	ProtocolConsul: func(ctx context.Context, s Settings, log *logger.CtxZapLogger) (DynamicConfiguration, error) {
		return NewConsulDynamicConfiguration(ctx, s, log)
	},
}

// HasBuilder reports whether protocol has a built-in builder
func HasBuilder(protocol string) bool {
	_, ok := builders[protocol]
	return ok
}

// NewLoader creates the dynamic configuration loader with "nop" registered as default
func NewLoader(log *logger.CtxZapLogger) *Loader {
	l := extension.NewLoader[DynamicConfiguration](Capability, log)
	l.MustRegister(ProtocolNop, func() (DynamicConfiguration, error) {
		return NewNopDynamicConfiguration(), nil
	})
	_ = l.SetDefault(ProtocolNop)
	return l
}

// Activate loads the implementation registered under protocol, registering the
// built-in builder for it with s first when nothing is registered yet.
// A built-in registration whose build fails is withdrawn, so a later call
// builds again with its own settings.
func Activate(ctx context.Context, l *Loader, protocol string, s Settings, log *logger.CtxZapLogger) (DynamicConfiguration, error) {
	registered := false
	if !l.Has(protocol) {
		build, ok := builders[protocol]
		if !ok {
			return nil, ErrUnknownProtocol.WithMsgf("unknown dynamic configuration protocol %q", protocol)
		}
		// A concurrent Activate may register first; GetExtension below serves either.
		registered = l.Register(protocol, func() (DynamicConfiguration, error) {
			return build(ctx, s, log)
		}) == nil
	}

	dyn, err := l.GetExtension(protocol)
	if err != nil && registered {
		l.Unregister(protocol)
	}
	return dyn, err
}
