// Package config loads kvcache settings from a file and KVCACHE_* environment
// variables and turns them into cache options.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/unkn0wn-root/kvcache"
	"github.com/unkn0wn-root/kvcache/codec"
	pr "github.com/unkn0wn-root/kvcache/provider"
	"github.com/unkn0wn-root/kvcache/provider/bigcache"
	"github.com/unkn0wn-root/kvcache/provider/memory"
	"github.com/unkn0wn-root/kvcache/provider/redis"
	"github.com/unkn0wn-root/kvcache/provider/ristretto"
)

const envPrefix = "KVCACHE"

// Store kinds accepted in cache.store.
const (
	StoreRedis     = "redis"
	StoreMemory    = "memory"
	StoreBigCache  = "bigcache"
	StoreRistretto = "ristretto"
)

type Config struct {
	Cache     CacheConfig       `mapstructure:"cache"`
	Redis     redis.Options     `mapstructure:"redis"`
	Memory    memory.Options    `mapstructure:"memory"`
	BigCache  bigcache.Options  `mapstructure:"bigcache"`
	Ristretto ristretto.Options `mapstructure:"ristretto"`
	Log       LogConfig         `mapstructure:"log"`
}

type CacheConfig struct {
	Name  string `mapstructure:"name"`
	Store string `mapstructure:"store"`
	// DefaultTTL is seconds as text; "" stores without expiry and anything
	// non-numeric makes Wrap skip its writes.
	DefaultTTL string              `mapstructure:"default_ttl"`
	Pool       kvcache.PoolOptions `mapstructure:"pool"` // max 0 => store default
	Disabled   bool                `mapstructure:"disabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// Load reads configPath, or ./kvcache.yaml when empty, then applies
// environment overrides such as KVCACHE_REDIS_ADDR. A missing default file
// is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("kvcache")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.name", "")
	v.SetDefault("cache.store", StoreRedis)
	v.SetDefault("cache.default_ttl", "")
	v.SetDefault("cache.pool.min", 0)
	v.SetDefault("cache.pool.max", 0)
	v.SetDefault("cache.disabled", false)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.scan_count", 256)

	v.SetDefault("memory.cleanup_interval", "1m")

	v.SetDefault("bigcache.life_window", "24h")
	v.SetDefault("bigcache.clean_window", "1m")
	v.SetDefault("bigcache.shards", 1024)
	v.SetDefault("bigcache.max_entries_in_window", 600000)
	v.SetDefault("bigcache.max_entry_size", 500)
	v.SetDefault("bigcache.hard_max_cache_size_mb", 0)

	v.SetDefault("ristretto.num_counters", 1_000_000)
	v.SetDefault("ristretto.max_cost", 64<<20)
	v.SetDefault("ristretto.buffer_items", 64)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) Validate() error {
	switch c.Cache.Store {
	case StoreRedis:
		if c.Redis.URL == "" && c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr or redis.url is required")
		}
	case StoreMemory, StoreBigCache:
	case StoreRistretto:
		if c.Ristretto.NumCounters <= 0 || c.Ristretto.MaxCost <= 0 {
			return fmt.Errorf("ristretto.num_counters and ristretto.max_cost must be > 0")
		}
	default:
		return fmt.Errorf("unknown cache.store %q", c.Cache.Store)
	}

	p := c.Cache.Pool
	if p.Min < 0 || p.Max < 0 {
		return fmt.Errorf("cache.pool bounds must be >= 0")
	}
	if p.Max > 0 && p.Min > p.Max {
		return fmt.Errorf("cache.pool.min %d exceeds cache.pool.max %d", p.Min, p.Max)
	}
	if p.Max == 0 && p.Min > 0 {
		return fmt.Errorf("cache.pool.max is required when cache.pool.min is set")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	return nil
}

// StoreOptions returns a pointer into c for the configured store.
func (c *Config) StoreOptions() (pr.Options, error) {
	switch c.Cache.Store {
	case StoreRedis:
		return &c.Redis, nil
	case StoreMemory:
		return &c.Memory, nil
	case StoreBigCache:
		return &c.BigCache, nil
	case StoreRistretto:
		return &c.Ristretto, nil
	}
	return nil, fmt.Errorf("unknown cache.store %q", c.Cache.Store)
}

// PoolOptions is nil when cache.pool.max is unset, leaving the choice to
// the store.
func (c *Config) PoolOptions() *kvcache.PoolOptions {
	if c.Cache.Pool.Max == 0 {
		return nil
	}
	return &c.Cache.Pool
}

func (c *Config) DefaultTTL() kvcache.TTL { return kvcache.ParseTTL(c.Cache.DefaultTTL) }

// CacheOptions assembles kvcache options for values of type V.
func CacheOptions[V any](c *Config, cd codec.Codec[V], log kvcache.Logger) (kvcache.Options[V], error) {
	store, err := c.StoreOptions()
	if err != nil {
		return kvcache.Options[V]{}, err
	}
	return kvcache.Options[V]{
		Name:         c.Cache.Name,
		StoreOptions: store,
		PoolOptions:  c.PoolOptions(),
		DefaultTTL:   c.DefaultTTL(),
		Codec:        cd,
		Logger:       log,
		Disabled:     c.Cache.Disabled,
	}, nil
}
