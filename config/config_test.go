package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/kvcache"
	"github.com/unkn0wn-root/kvcache/codec"
	"github.com/unkn0wn-root/kvcache/provider/memory"
	"github.com/unkn0wn-root/kvcache/provider/redis"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "kvcache.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no kvcache.yaml here

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Cache.Store)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.Equal(t, time.Minute, cfg.Memory.CleanupInterval)
	assert.Nil(t, cfg.PoolOptions())
	assert.Equal(t, kvcache.NoTTL, cfg.DefaultTTL())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	p := writeConfig(t, `
cache:
  name: users
  store: memory
  default_ttl: 300
  pool:
    min: 2
    max: 4
memory:
  cleanup_interval: 10s
log:
  level: debug
  format: console
`)
	t.Setenv("KVCACHE_CACHE_NAME", "orders")

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.Cache.Name, "env overrides file")
	assert.Equal(t, kvcache.Seconds(300), cfg.DefaultTTL())
	assert.Equal(t, &kvcache.PoolOptions{Min: 2, Max: 4}, cfg.PoolOptions())
	assert.Equal(t, 10*time.Second, cfg.Memory.CleanupInterval)

	store, err := cfg.StoreOptions()
	require.NoError(t, err)
	mo, ok := store.(*memory.Options)
	require.True(t, ok, "memory store expected, got %T", store)
	assert.Same(t, &cfg.Memory, mo)
}

func TestInvalidTTLTextIsKept(t *testing.T) {
	p := writeConfig(t, "cache:\n  store: memory\n  default_ttl: NOT_NUMBER\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.False(t, cfg.DefaultTTL().Writable())
	assert.True(t, cfg.DefaultTTL().IsSet())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Cache: CacheConfig{Store: StoreMemory},
			Log:   LogConfig{Level: "info", Format: "json"},
		}
	}
	cases := map[string]func(*Config){
		"unknown store":      func(c *Config) { c.Cache.Store = "memcached" },
		"redis without addr": func(c *Config) { c.Cache.Store = StoreRedis },
		"ristretto sizing":   func(c *Config) { c.Cache.Store = StoreRistretto },
		"min over max":       func(c *Config) { c.Cache.Pool = kvcache.PoolOptions{Min: 5, Max: 2} },
		"min without max":    func(c *Config) { c.Cache.Pool = kvcache.PoolOptions{Min: 1} },
		"negative":           func(c *Config) { c.Cache.Pool = kvcache.PoolOptions{Min: -1, Max: 2} },
		"bad level":          func(c *Config) { c.Log.Level = "trace" },
		"bad format":         func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	ok := base()
	assert.NoError(t, ok.Validate())
}

func TestCacheOptionsBuildsWorkingCache(t *testing.T) {
	p := writeConfig(t, "cache:\n  name: cfg\n  store: memory\n  default_ttl: 60\n")
	cfg, err := Load(p)
	require.NoError(t, err)

	opts, err := CacheOptions[string](cfg, codec.String{}, nil)
	require.NoError(t, err)
	c, err := kvcache.New(opts)
	require.NoError(t, err)
	defer c.Close(t.Context())

	assert.Equal(t, "cfg", c.Name())
	assert.Equal(t, kvcache.Seconds(60), c.DefaultTTL())
	assert.Same(t, &cfg.Memory, c.StoreOptions())

	v, err := c.Wrap(t.Context(), "k", func(_ context.Context) (string, error) { return "v", nil })
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestRedisStoreOptions(t *testing.T) {
	t.Setenv("KVCACHE_REDIS_ADDR", "cache.internal:6380")
	t.Setenv("KVCACHE_REDIS_DB", "2")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	store, err := cfg.StoreOptions()
	require.NoError(t, err)
	ro, ok := store.(*redis.Options)
	require.True(t, ok)
	assert.Equal(t, "cache.internal:6380", ro.Addr)
	assert.Equal(t, 2, ro.DB)
	assert.Equal(t, int64(256), ro.ScanCount)
}
