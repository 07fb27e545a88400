package dynamic

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-yogan-confenv/logger"
)

func setupRedisDynamic(t *testing.T) (*miniredis.Miniredis, *RedisDynamicConfiguration) {
	t.Helper()
	mr := miniredis.RunT(t)
	mr.HSet("dubbo:dubbo", "timeout", "1000")

	d, err := NewRedisDynamicConfiguration(context.Background(), Settings{Address: mr.Addr()}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return mr, d
}

func TestRedis_RefreshLoadsDefaultGroup(t *testing.T) {
	mr, d := setupRedisDynamic(t)

	v, ok := d.GetProperty("timeout")
	assert.True(t, ok)
	assert.Equal(t, "1000", v)

	l := &recordingListener{}
	d.AddListener("timeout", l)
	mr.HSet("dubbo:dubbo", "timeout", "2000")
	require.NoError(t, d.Refresh(context.Background()))

	assert.Equal(t, []ConfigChangeEvent{{Key: "timeout", Value: "2000", Type: ChangeModified}}, l.Events())
}

func TestRedis_GetConfigAndPublish(t *testing.T) {
	ctx := context.Background()
	mr, d := setupRedisDynamic(t)

	_, ok, err := d.GetConfig(ctx, "dubbo.properties", "demo-app")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.PublishConfig(ctx, "demo-app", "dubbo.properties", "a=b"))
	assert.Equal(t, "a=b", mr.HGet("dubbo:demo-app", "dubbo.properties"))

	v, ok, err := d.GetConfig(ctx, "dubbo.properties", "demo-app")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a=b", v)
}

func TestRedis_Watch(t *testing.T) {
	ctx := context.Background()
	_, d := setupRedisDynamic(t)
	require.NoError(t, d.Watch(ctx))

	require.NoError(t, d.PublishConfig(ctx, "", "retries", "3"))
	assert.Eventually(t, func() bool {
		v, ok := d.GetProperty("retries")
		return ok && v == "3"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, d.RemoveConfig(ctx, "", "retries"))
	assert.Eventually(t, func() bool {
		_, ok := d.GetProperty("retries")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedis_WithClientLeavesClientOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	d := NewRedisDynamicConfigurationWithClient(client, Settings{}, nil)
	require.NoError(t, d.Close())
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestRedis_Ping(t *testing.T) {
	mr, d := setupRedisDynamic(t)
	assert.NoError(t, d.Ping(context.Background()))

	mr.Close()
	assert.ErrorIs(t, d.Ping(context.Background()), ErrConnect)
}

func TestRedis_InvalidSettings(t *testing.T) {
	_, err := NewRedisDynamicConfiguration(context.Background(), Settings{}, nil)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestRedis_ConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisDynamicConfiguration(context.Background(),
		Settings{Address: addr, Timeout: 200 * time.Millisecond}, logger.NewNop())
	assert.ErrorIs(t, err, ErrConnect)
}
