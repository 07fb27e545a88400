package environment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-yogan-confenv/configcenter"
	"github.com/KOMKZ/go-yogan-confenv/dynamic"
	"github.com/KOMKZ/go-yogan-confenv/health"
	"github.com/KOMKZ/go-yogan-confenv/logger"
)

func TestHealthCheck_NoRemoteStores(t *testing.T) {
	e := newTestEnvironment(t)
	report := e.HealthCheck(context.Background(), time.Second)
	assert.True(t, report.IsHealthy())
	assert.Empty(t, report.Checks)
}

func TestHealthCheck_RedisConfigCenter(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	mr.HSet("dubbo:dubbo", "dubbo.properties", "timeout=700")

	e := newTestEnvironment(t, WithDynamicLoader(dynamic.NewLoader(logger.NewNop())))
	cc := configcenter.NewConfig()
	cc.Protocol = dynamic.ProtocolRedis
	cc.Address = mr.Addr()
	e.SetConfigCenter(cc)
	require.NoError(t, e.SetExternalConfiguration(ctx, nil))
	t.Cleanup(e.DynamicLoader().Reset)

	assert.Equal(t, "700", e.ExternalConfigurationMap()["timeout"])

	report := e.HealthCheck(ctx, time.Second)
	require.Len(t, report.Checks, 1)
	assert.True(t, report.IsHealthy())

	mr.Close()
	report = e.HealthCheck(ctx, time.Second)
	assert.Equal(t, health.StatusUnhealthy, report.Status)
	assert.NotEmpty(t, report.Checks["dynamic-configuration/redis"].Error)
}

func TestHealthCheck_CheckDisabledDegrades(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	e := newTestEnvironment(t)
	cc := configcenter.NewConfig()
	cc.Protocol = dynamic.ProtocolRedis
	cc.Address = mr.Addr()
	cc.Check = false
	e.SetConfigCenter(cc)
	require.NoError(t, e.SetExternalConfiguration(ctx, nil))
	t.Cleanup(e.DynamicLoader().Reset)

	mr.Close()
	assert.True(t, e.HealthCheck(ctx, time.Second).IsDegraded())
}
