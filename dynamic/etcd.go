package dynamic

import (
	"context"
	"strings"
	"sync"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/logger"
	"github.com/KOMKZ/go-yogan-confenv/validator"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

// EtcdDynamicConfiguration reads configuration stored under /root/group/key in etcd.
// GetProperty serves a local snapshot kept current by Refresh and Watch.
type EtcdDynamicConfiguration struct {
	client     *clientv3.Client
	ownsClient bool
	settings   Settings
	snapshot   *config.PropertyMap
	listeners  *listenerSet
	logger     *logger.CtxZapLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEtcdDynamicConfiguration connects to etcd and loads the default group
func NewEtcdDynamicConfiguration(ctx context.Context, s Settings, log *logger.CtxZapLogger) (*EtcdDynamicConfiguration, error) {
	if log == nil {
		log = logger.GetLogger("dynamic")
	}
	s = s.withDefaults()
	if err := validator.Validate(ErrInvalidSettings.WithMsgf("invalid etcd settings"), s); err != nil {
		return nil, err
	}
	endpoints := s.Endpoints()

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: s.Timeout,
		Username:    s.Username,
		Password:    s.Password,
		Logger:      log.GetZapLogger(),
	})
	if err != nil {
		return nil, ErrConnect.Wrap(err)
	}

	statusCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if _, err := client.Status(statusCtx, endpoints[0]); err != nil {
		_ = client.Close()
		return nil, ErrConnect.WithMsgf("etcd health check failed").Wrap(err)
	}

	d := NewEtcdDynamicConfigurationWithClient(client, s, log)
	d.ownsClient = true
	if err := d.Refresh(statusCtx); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.DebugCtx(ctx, "etcd dynamic configuration connected",
		zap.Strings("endpoints", endpoints), zap.String("group", s.Group))
	return d, nil
}

// NewEtcdDynamicConfigurationWithClient wraps an existing client; Close leaves it open
func NewEtcdDynamicConfigurationWithClient(client *clientv3.Client, s Settings, log *logger.CtxZapLogger) *EtcdDynamicConfiguration {
	if log == nil {
		log = logger.GetLogger("dynamic")
	}
	return &EtcdDynamicConfiguration{
		client:    client,
		settings:  s.withDefaults(),
		snapshot:  config.NewPropertyMap(nil),
		listeners: newListenerSet(),
		logger:    log,
	}
}

// etcdGroupPrefix returns /root/group/
func etcdGroupPrefix(root, group string) string {
	return "/" + strings.Trim(root, "/") + "/" + group + "/"
}

func (d *EtcdDynamicConfiguration) prefix(group string) string {
	if group == "" {
		group = d.settings.Group
	}
	return etcdGroupPrefix(d.settings.Root, group)
}

// Refresh reloads the default group into the snapshot, notifying listeners of differences
func (d *EtcdDynamicConfiguration) Refresh(ctx context.Context) error {
	prefix := d.prefix("")
	resp, err := d.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return ErrRead.WithMsgf("etcd get %s failed", prefix).Wrap(err)
	}

	fresh := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		fresh[strings.TrimPrefix(string(kv.Key), prefix)] = string(kv.Value)
	}
	diffSnapshot(d.snapshot, d.listeners, fresh)
	return nil
}

// Watch follows changes of the default group until ctx is done or Close is called
func (d *EtcdDynamicConfiguration) Watch(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	prefix := d.prefix("")
	wch := d.client.Watch(watchCtx, prefix, clientv3.WithPrefix())

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for resp := range wch {
			if err := resp.Err(); err != nil {
				d.logger.WarnCtx(watchCtx, "etcd watch error", zap.String("prefix", prefix), zap.Error(err))
				continue
			}
			for _, ev := range resp.Events {
				key := strings.TrimPrefix(string(ev.Kv.Key), prefix)
				applyChange(d.snapshot, d.listeners, key, string(ev.Kv.Value), ev.Type == clientv3.EventTypeDelete)
			}
		}
	}()
	return nil
}

// GetProperty implements config.Configuration
func (d *EtcdDynamicConfiguration) GetProperty(key string) (interface{}, bool) {
	v, ok := d.snapshot.Get(key)
	if !ok {
		return nil, false
	}
	return v, true
}

// GetConfig reads /root/group/key directly
func (d *EtcdDynamicConfiguration) GetConfig(ctx context.Context, key, group string) (string, bool, error) {
	path := d.prefix(group) + key
	resp, err := d.client.Get(ctx, path)
	if err != nil {
		return "", false, ErrRead.WithMsgf("etcd get %s failed", path).Wrap(err)
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

// PublishConfig writes /root/group/key
func (d *EtcdDynamicConfiguration) PublishConfig(ctx context.Context, group, key, value string) error {
	path := d.prefix(group) + key
	if _, err := d.client.Put(ctx, path, value); err != nil {
		return ErrWrite.WithMsgf("etcd put %s failed", path).Wrap(err)
	}
	return nil
}

// Ping checks the first reachable endpoint
func (d *EtcdDynamicConfiguration) Ping(ctx context.Context) error {
	var lastErr error
	for _, ep := range d.client.Endpoints() {
		if _, err := d.client.Status(ctx, ep); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return ErrConnect.WithMsgf("etcd unreachable").Wrap(lastErr)
}

// AddListener implements DynamicConfiguration
func (d *EtcdDynamicConfiguration) AddListener(key string, l ConfigurationListener) {
	d.listeners.add(key, l)
}

// RemoveListener implements DynamicConfiguration
func (d *EtcdDynamicConfiguration) RemoveListener(key string, l ConfigurationListener) {
	d.listeners.remove(key, l)
}

// Close stops watching and closes an owned client
func (d *EtcdDynamicConfiguration) Close() error {
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
