package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsEnvProduction())
	assert.Equal(t, ":8081", cfg.ListenAddress)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)
	assert.Equal(t, 30*time.Second, cfg.CacheStaleTime)
	assert.Equal(t, 5*time.Minute, cfg.CacheGCTime)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("OFFERS_ENVIRONMENT", "dev")
	t.Setenv("OFFERS_STORAGE_DRIVER", "memory")
	t.Setenv("OFFERS_CACHE_BACKEND", "redis")
	t.Setenv("OFFERS_CACHE_STALE_TIME", "1m")
	t.Setenv("OFFERS_REDIS_DB", "3")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnvProduction())
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, CacheBackendRedis, cfg.CacheBackend)
	assert.Equal(t, time.Minute, cfg.CacheStaleTime)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestValidate(t *testing.T) {
	valid := Config{StorageDriver: "memory", CacheBackend: "memory", DefaultPageSize: 10, MaxPageSize: 100}
	require.NoError(t, valid.Validate())

	tests := map[string]func(cfg *Config){
		"storage driver": func(cfg *Config) { cfg.StorageDriver = "sqlite" },
		"cache backend":  func(cfg *Config) { cfg.CacheBackend = "memcached" },
		"page sizes":     func(cfg *Config) { cfg.MaxPageSize = 5 },
		"zero page size": func(cfg *Config) { cfg.DefaultPageSize = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
