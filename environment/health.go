package environment

import (
	"context"
	"time"

	"github.com/KOMKZ/go-yogan-confenv/dynamic"
	"github.com/KOMKZ/go-yogan-confenv/health"
)

// HealthCheck pings every loaded dynamic configuration that talks to a
// remote store. Failures are critical unless the config center disabled Check.
func (e *Environment) HealthCheck(ctx context.Context, timeout time.Duration) *health.Report {
	critical := true
	if cc := e.ConfigCenter(); cc != nil && !cc.Check {
		critical = false
	}

	agg := health.NewAggregator(timeout)
	for _, name := range e.dynamicLoader.LoadedNames() {
		inst, err := e.dynamicLoader.GetExtension(name)
		if err != nil {
			continue
		}
		pinger, ok := inst.(dynamic.Pinger)
		if !ok {
			continue
		}
		checker := health.CheckerFunc{CheckName: dynamic.Capability + "/" + name, Fn: pinger.Ping}
		if critical {
			agg.Register(checker)
		} else {
			agg.RegisterOptional(checker)
		}
	}
	return agg.Check(ctx)
}
