package dynamic

import (
	"context"
	"errors"
	"sync"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/logger"
	"github.com/KOMKZ/go-yogan-confenv/validator"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisDynamicConfiguration stores each group as a hash "root:group".
// Writers publish the changed key on "root:group:changes".
type RedisDynamicConfiguration struct {
	client     redis.UniversalClient
	ownsClient bool
	settings   Settings
	snapshot   *config.PropertyMap
	listeners  *listenerSet
	logger     *logger.CtxZapLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisDynamicConfiguration connects to redis and loads the default group
func NewRedisDynamicConfiguration(ctx context.Context, s Settings, log *logger.CtxZapLogger) (*RedisDynamicConfiguration, error) {
	s = s.withDefaults()
	if err := validator.Validate(ErrInvalidSettings.WithMsgf("invalid redis settings"), s); err != nil {
		return nil, err
	}
	endpoints := s.Endpoints()

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       endpoints,
		Username:    s.Username,
		Password:    s.Password,
		DialTimeout: s.Timeout,
		ReadTimeout: s.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, ErrConnect.WithMsgf("redis ping failed").Wrap(err)
	}

	d := NewRedisDynamicConfigurationWithClient(client, s, log)
	d.ownsClient = true
	if err := d.Refresh(pingCtx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return d, nil
}

// NewRedisDynamicConfigurationWithClient wraps an existing client; Close leaves it open
func NewRedisDynamicConfigurationWithClient(client redis.UniversalClient, s Settings, log *logger.CtxZapLogger) *RedisDynamicConfiguration {
	if log == nil {
		log = logger.GetLogger("dynamic")
	}
	return &RedisDynamicConfiguration{
		client:    client,
		settings:  s.withDefaults(),
		snapshot:  config.NewPropertyMap(nil),
		listeners: newListenerSet(),
		logger:    log,
	}
}

func (d *RedisDynamicConfiguration) hashKey(group string) string {
	if group == "" {
		group = d.settings.Group
	}
	return d.settings.Root + ":" + group
}

func (d *RedisDynamicConfiguration) channel(group string) string {
	return d.hashKey(group) + ":changes"
}

// Refresh reloads the default group into the snapshot
func (d *RedisDynamicConfiguration) Refresh(ctx context.Context) error {
	fresh, err := d.client.HGetAll(ctx, d.hashKey("")).Result()
	if err != nil {
		return ErrRead.WithMsgf("redis hgetall %s failed", d.hashKey("")).Wrap(err)
	}
	diffSnapshot(d.snapshot, d.listeners, fresh)
	return nil
}

// Watch subscribes to the change channel of the default group
func (d *RedisDynamicConfiguration) Watch(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}

	pubsub := d.client.Subscribe(ctx, d.channel(""))
	if _, err := pubsub.ReceiveTimeout(ctx, d.settings.Timeout); err != nil {
		_ = pubsub.Close()
		return ErrConnect.WithMsgf("redis subscribe %s failed", d.channel("")).Wrap(err)
	}
	// changes published before the subscription took effect
	refreshCtx, cancelRefresh := context.WithTimeout(ctx, d.settings.Timeout)
	err := d.Refresh(refreshCtx)
	cancelRefresh()
	if err != nil {
		_ = pubsub.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	ch := pubsub.Channel()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer pubsub.Close()
		for {
			select {
			case <-watchCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				d.reloadKey(watchCtx, msg.Payload)
			}
		}
	}()
	return nil
}

func (d *RedisDynamicConfiguration) reloadKey(ctx context.Context, key string) {
	value, err := d.client.HGet(ctx, d.hashKey(""), key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		applyChange(d.snapshot, d.listeners, key, "", true)
	case err != nil:
		d.logger.WarnCtx(ctx, "redis reload key failed", zap.String("key", key), zap.Error(err))
	default:
		applyChange(d.snapshot, d.listeners, key, value, false)
	}
}

// GetProperty implements config.Configuration
func (d *RedisDynamicConfiguration) GetProperty(key string) (interface{}, bool) {
	v, ok := d.snapshot.Get(key)
	if !ok {
		return nil, false
	}
	return v, true
}

// GetConfig reads key of group directly
func (d *RedisDynamicConfiguration) GetConfig(ctx context.Context, key, group string) (string, bool, error) {
	v, err := d.client.HGet(ctx, d.hashKey(group), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, ErrRead.WithMsgf("redis hget %s %s failed", d.hashKey(group), key).Wrap(err)
	}
	return v, true, nil
}

// PublishConfig writes key and announces it on the change channel
func (d *RedisDynamicConfiguration) PublishConfig(ctx context.Context, group, key, value string) error {
	if err := d.client.HSet(ctx, d.hashKey(group), key, value).Err(); err != nil {
		return ErrWrite.WithMsgf("redis hset %s %s failed", d.hashKey(group), key).Wrap(err)
	}
	if err := d.client.Publish(ctx, d.channel(group), key).Err(); err != nil {
		return ErrWrite.WithMsgf("redis publish %s failed", d.channel(group)).Wrap(err)
	}
	return nil
}

// RemoveConfig deletes key and announces it
func (d *RedisDynamicConfiguration) RemoveConfig(ctx context.Context, group, key string) error {
	if err := d.client.HDel(ctx, d.hashKey(group), key).Err(); err != nil {
		return ErrWrite.WithMsgf("redis hdel %s %s failed", d.hashKey(group), key).Wrap(err)
	}
	return d.client.Publish(ctx, d.channel(group), key).Err()
}

// Ping checks the redis connection
func (d *RedisDynamicConfiguration) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil {
		return ErrConnect.WithMsgf("redis ping failed").Wrap(err)
	}
	return nil
}

// AddListener implements DynamicConfiguration
func (d *RedisDynamicConfiguration) AddListener(key string, l ConfigurationListener) {
	d.listeners.add(key, l)
}

// RemoveListener implements DynamicConfiguration
func (d *RedisDynamicConfiguration) RemoveListener(key string, l ConfigurationListener) {
	d.listeners.remove(key, l)
}

// Close stops watching and closes an owned client
func (d *RedisDynamicConfiguration) Close() error {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()
	d.wg.Wait()

	if d.ownsClient {
		return d.client.Close()
	}
	return nil
}
