package dynamic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-yogan-confenv/logger"
	"github.com/KOMKZ/go-yogan-confenv/retry"
	"go.uber.org/zap/zapcore"
)

// fakeConsulKV serves the subset of the consul KV HTTP API used here.
// Blocking queries wait up to blockFor for the index to move.
type fakeConsulKV struct {
	mu       sync.Mutex
	data     map[string]string
	index    uint64
	failNext int // blocking queries to answer with 500
}

const blockFor = 200 * time.Millisecond

func newFakeConsul(t *testing.T, data map[string]string) (*fakeConsulKV, *httptest.Server) {
	t.Helper()
	f := &fakeConsulKV{data: data, index: 1}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeConsulKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/v1/status/leader" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"127.0.0.1:8300"`))
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/v1/kv/")

	if raw := r.URL.Query().Get("index"); raw != "" && r.Method == http.MethodGet {
		waitIndex, _ := strconv.ParseUint(raw, 10, 64)
		if f.blockingFailure() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		deadline := time.Now().Add(blockFor)
		for time.Now().Before(deadline) && f.currentIndex() <= waitIndex && r.Context().Err() == nil {
			time.Sleep(5 * time.Millisecond)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.data[key] = string(body)
		f.index++
		_, _ = w.Write([]byte("true"))
	case http.MethodGet:
		var pairs []*consulapi.KVPair
		if _, recurse := r.URL.Query()["recurse"]; recurse {
			for k, v := range f.data {
				if strings.HasPrefix(k, key) {
					pairs = append(pairs, &consulapi.KVPair{Key: k, Value: []byte(v)})
				}
			}
			sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
		} else if v, ok := f.data[key]; ok {
			pairs = append(pairs, &consulapi.KVPair{Key: key, Value: []byte(v)})
		}

		w.Header().Set("X-Consul-Index", strconv.FormatUint(f.index, 10))
		w.Header().Set("X-Consul-Knownleader", "true")
		w.Header().Set("X-Consul-Lastcontact", "0")
		if len(pairs) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pairs)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeConsulKV) blockingFailure() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext > 0 {
		f.failNext--
		return true
	}
	return false
}

func (f *fakeConsulKV) currentIndex() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

func (f *fakeConsulKV) put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	f.index++
}

func TestConsul_RefreshAndGetProperty(t *testing.T) {
	_, srv := newFakeConsul(t, map[string]string{
		"dubbo/dubbo/timeout":       "1000",
		"dubbo/dubbo/":              "",
		"dubbo/other/timeout":       "9",
		"dubbo/dubbo/registry.addr": "zk://127.0.0.1:2181",
	})

	d, err := NewConsulDynamicConfiguration(context.Background(), Settings{Address: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	defer d.Close()

	v, ok := d.GetProperty("timeout")
	assert.True(t, ok)
	assert.Equal(t, "1000", v)

	v, ok = d.GetProperty("registry.addr")
	assert.True(t, ok)
	assert.Equal(t, "zk://127.0.0.1:2181", v)

	_, ok = d.GetProperty("")
	assert.False(t, ok)
}

func TestConsul_PublishAndGetConfig(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeConsul(t, map[string]string{})

	d, err := NewConsulDynamicConfiguration(ctx, Settings{Address: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	defer d.Close()

	_, ok, err := d.GetConfig(ctx, "dubbo.properties", "demo-app")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.PublishConfig(ctx, "demo-app", "dubbo.properties", "a=b"))
	fake.mu.Lock()
	assert.Equal(t, "a=b", fake.data["dubbo/demo-app/dubbo.properties"])
	fake.mu.Unlock()

	v, ok, err := d.GetConfig(ctx, "dubbo.properties", "demo-app")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a=b", v)
}

func TestConsul_RefreshFiresListeners(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeConsul(t, map[string]string{"dubbo/dubbo/timeout": "1"})

	d, err := NewConsulDynamicConfiguration(ctx, Settings{Address: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	defer d.Close()

	l := &recordingListener{}
	d.AddListener("timeout", l)
	require.NoError(t, d.PublishConfig(ctx, "", "timeout", "2"))
	require.NoError(t, d.Refresh(ctx))

	assert.Equal(t, []ConfigChangeEvent{{Key: "timeout", Value: "2", Type: ChangeModified}}, l.Events())
}

func TestConsul_Ping(t *testing.T) {
	_, srv := newFakeConsul(t, map[string]string{})

	d, err := NewConsulDynamicConfiguration(context.Background(), Settings{Address: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	defer d.Close()

	assert.NoError(t, d.Ping(context.Background()))

	srv.Close()
	assert.ErrorIs(t, d.Ping(context.Background()), ErrConnect)
}

func TestConsul_InvalidSettings(t *testing.T) {
	_, err := NewConsulDynamicConfiguration(context.Background(), Settings{}, nil)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestConsul_WatchPicksUpChanges(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeConsul(t, map[string]string{"dubbo/dubbo/timeout": "1"})

	d, err := NewConsulDynamicConfiguration(ctx, Settings{Address: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Watch(ctx))
	require.NoError(t, d.Watch(ctx))

	fake.put("dubbo/dubbo/timeout", "2")
	assert.Eventually(t, func() bool {
		v, ok := d.GetProperty("timeout")
		return ok && v == "2"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsul_WatchRecoversAfterFailedQuery(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeConsul(t, map[string]string{"dubbo/dubbo/timeout": "1"})
	log, logs := logger.NewObserved("dynamic", zapcore.WarnLevel)

	d, err := NewConsulDynamicConfiguration(ctx, Settings{Address: srv.URL}, log)
	require.NoError(t, err)
	defer d.Close()
	d.backoff = retry.ConstantBackoff(10 * time.Millisecond)

	fake.mu.Lock()
	fake.failNext = 1
	fake.mu.Unlock()
	require.NoError(t, d.Watch(ctx))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("consul watch failed").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	fake.put("dubbo/dubbo/timeout", "5")
	assert.Eventually(t, func() bool {
		v, ok := d.GetProperty("timeout")
		return ok && v == "5"
	}, 2*time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("consul watch failed").All()[0]
	assert.Equal(t, int64(1), entry.ContextMap()["attempt"])
	assert.Equal(t, 1, logs.FilterMessage("consul watch failed").Len())
}

func TestConsul_CloseStopsWatch(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeConsul(t, map[string]string{})

	d, err := NewConsulDynamicConfiguration(ctx, Settings{Address: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, d.Watch(ctx))

	done := make(chan struct{})
	go func() {
		_ = d.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return while a blocking query was in flight")
	}
}
