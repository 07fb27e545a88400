package environment

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Origin cache kinds, used as the "kind" metric attribute
const (
	KindProperties  = "properties"
	KindSystem      = "system"
	KindEnvironment = "environment"
	KindExternal    = "external"
	KindAppExternal = "app_external"
	KindStartup     = "startup"
	KindRuntime     = "runtime"
)

// MeterName is the instrumentation scope of the default meter
const MeterName = "github.com/KOMKZ/go-yogan-confenv/environment"

// Metrics records origin cache and composite activity
type Metrics struct {
	mu         sync.RWMutex
	registered bool

	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
	cacheSize   metric.Int64ObservableGauge
	composites  metric.Int64Counter

	sizeMu    sync.RWMutex
	sizeFuncs map[string]func() int
}

// NewMetrics creates an unregistered metrics provider; recording is a no-op until RegisterMetrics
func NewMetrics() *Metrics {
	return &Metrics{sizeFuncs: make(map[string]func() int)}
}

// MetricsName returns the metrics group name
func (m *Metrics) MetricsName() string {
	return "confenv"
}

// RegisterMetrics creates the instruments on meter; a nil meter uses the global provider
func (m *Metrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(MeterName)
	}

	var err error
	m.cacheHits, err = meter.Int64Counter(
		"confenv_origin_cache_hits_total",
		metric.WithDescription("Origin cache lookups answered by an existing instance"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return err
	}

	m.cacheMisses, err = meter.Int64Counter(
		"confenv_origin_cache_misses_total",
		metric.WithDescription("Origin cache lookups that constructed a new instance"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return err
	}

	m.cacheSize, err = meter.Int64ObservableGauge(
		"confenv_origin_cache_size",
		metric.WithDescription("Number of cached configuration instances"),
		metric.WithUnit("{instance}"),
		metric.WithInt64Callback(m.collectSizes),
	)
	if err != nil {
		return err
	}

	m.composites, err = meter.Int64Counter(
		"confenv_runtime_composites_total",
		metric.WithDescription("Runtime composites built"),
		metric.WithUnit("{composite}"),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

// IsRegistered returns whether metrics have been registered
func (m *Metrics) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}

func (m *Metrics) observeSize(kind string, size func() int) {
	m.sizeMu.Lock()
	defer m.sizeMu.Unlock()
	m.sizeFuncs[kind] = size
}

func (m *Metrics) collectSizes(_ context.Context, observer metric.Int64Observer) error {
	m.sizeMu.RLock()
	defer m.sizeMu.RUnlock()

	for kind, size := range m.sizeFuncs {
		observer.Observe(int64(size()), metric.WithAttributes(attribute.String("kind", kind)))
	}
	return nil
}

func (m *Metrics) recordHit(ctx context.Context, kind string) {
	if !m.IsRegistered() {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) recordMiss(ctx context.Context, kind string) {
	if !m.IsRegistered() {
		return
	}
	m.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) recordComposite(ctx context.Context, kind string) {
	if !m.IsRegistered() {
		return
	}
	m.composites.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
