package dynamic

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/logger"
	"github.com/KOMKZ/go-yogan-confenv/retry"
	"github.com/KOMKZ/go-yogan-confenv/validator"
	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

const consulWatchWait = 30 * time.Second

var consulWatchBackoff = retry.ExponentialBackoff(time.Second,
	retry.WithMaxDelay(30*time.Second),
	retry.WithJitter(0.1))

// ConsulDynamicConfiguration reads configuration from the consul KV store
// under root/group/key. Watch uses blocking queries on the group prefix.
type ConsulDynamicConfiguration struct {
	kv        *consulapi.KV
	status    *consulapi.Status
	settings  Settings
	snapshot  *config.PropertyMap
	listeners *listenerSet
	logger    *logger.CtxZapLogger
	backoff   retry.BackoffStrategy

	mu        sync.Mutex
	lastIndex uint64
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewConsulDynamicConfiguration creates a consul client and loads the default group
func NewConsulDynamicConfiguration(ctx context.Context, s Settings, log *logger.CtxZapLogger) (*ConsulDynamicConfiguration, error) {
	if log == nil {
		log = logger.GetLogger("dynamic")
	}
	s = s.withDefaults()
	if err := validator.Validate(ErrInvalidSettings.WithMsgf("invalid consul settings"), s); err != nil {
		return nil, err
	}
	endpoints := s.Endpoints()

	cfg := consulapi.DefaultConfig()
	cfg.Address = endpoints[0]
	if s.Username != "" {
		cfg.HttpAuth = &consulapi.HttpBasicAuth{Username: s.Username, Password: s.Password}
	}

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, ErrConnect.WithMsgf("create consul client failed").Wrap(err)
	}

	d := &ConsulDynamicConfiguration{
		kv:        client.KV(),
		status:    client.Status(),
		settings:  s,
		snapshot:  config.NewPropertyMap(nil),
		listeners: newListenerSet(),
		logger:    log,
		backoff:   consulWatchBackoff,
	}

	refreshCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := d.Refresh(refreshCtx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ConsulDynamicConfiguration) prefix(group string) string {
	if group == "" {
		group = d.settings.Group
	}
	return strings.Trim(d.settings.Root, "/") + "/" + group + "/"
}

// Refresh reloads the default group into the snapshot
func (d *ConsulDynamicConfiguration) Refresh(ctx context.Context) error {
	_, err := d.list(ctx, 0)
	return err
}

func (d *ConsulDynamicConfiguration) list(ctx context.Context, waitIndex uint64) (uint64, error) {
	prefix := d.prefix("")
	q := &consulapi.QueryOptions{WaitIndex: waitIndex}
	if waitIndex > 0 {
		q.WaitTime = consulWatchWait
	}

	pairs, meta, err := d.kv.List(prefix, q.WithContext(ctx))
	if err != nil {
		return waitIndex, ErrRead.WithMsgf("consul list %s failed", prefix).Wrap(err)
	}

	fresh := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if strings.HasSuffix(pair.Key, "/") {
			continue
		}
		fresh[strings.TrimPrefix(pair.Key, prefix)] = string(pair.Value)
	}
	diffSnapshot(d.snapshot, d.listeners, fresh)

	var index uint64
	if meta != nil {
		index = meta.LastIndex
	}
	d.mu.Lock()
	d.lastIndex = index
	d.mu.Unlock()
	return index, nil
}

// Watch polls the group prefix with blocking queries until ctx is done or Close is called
func (d *ConsulDynamicConfiguration) Watch(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	index := d.lastIndex

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		failures := retry.NewTracker(d.backoff)
		for watchCtx.Err() == nil {
			next, err := d.list(watchCtx, index)
			if err != nil {
				if watchCtx.Err() != nil {
					return
				}
				delay := failures.Failure()
				d.logger.WarnCtx(watchCtx, "consul watch failed",
					zap.Int("attempt", failures.Attempts()),
					zap.Duration("retry_in", delay),
					zap.Error(err))
				if retry.Wait(watchCtx, delay) != nil {
					return
				}
				continue
			}
			failures.Success()
			// Index going backwards means the KV store was reset
			if next < index {
				next = 0
			}
			index = next
		}
	}()
	return nil
}

// GetProperty implements config.Configuration
func (d *ConsulDynamicConfiguration) GetProperty(key string) (interface{}, bool) {
	v, ok := d.snapshot.Get(key)
	if !ok {
		return nil, false
	}
	return v, true
}

// GetConfig reads root/group/key directly
func (d *ConsulDynamicConfiguration) GetConfig(ctx context.Context, key, group string) (string, bool, error) {
	path := d.prefix(group) + key
	pair, _, err := d.kv.Get(path, (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return "", false, ErrRead.WithMsgf("consul get %s failed", path).Wrap(err)
	}
	if pair == nil {
		return "", false, nil
	}
	return string(pair.Value), true, nil
}

// PublishConfig writes root/group/key
func (d *ConsulDynamicConfiguration) PublishConfig(ctx context.Context, group, key, value string) error {
	path := d.prefix(group) + key
	_, err := d.kv.Put(&consulapi.KVPair{Key: path, Value: []byte(value)}, (&consulapi.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return ErrWrite.WithMsgf("consul put %s failed", path).Wrap(err)
	}
	return nil
}

// Ping asks the agent for the raft leader
func (d *ConsulDynamicConfiguration) Ping(ctx context.Context) error {
	if _, err := d.status.LeaderWithQueryOptions((&consulapi.QueryOptions{}).WithContext(ctx)); err != nil {
		return ErrConnect.WithMsgf("consul status failed").Wrap(err)
	}
	return nil
}

// AddListener implements DynamicConfiguration
func (d *ConsulDynamicConfiguration) AddListener(key string, l ConfigurationListener) {
	d.listeners.add(key, l)
}

// RemoveListener implements DynamicConfiguration
func (d *ConsulDynamicConfiguration) RemoveListener(key string, l ConfigurationListener) {
	d.listeners.remove(key, l)
}

// Close stops watching; the consul client holds no connection to release
func (d *ConsulDynamicConfiguration) Close() error {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()
	d.wg.Wait()
	return nil
}
