package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg := fromViper(viper.New())

	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "favorites.db", cfg.SQLite.Path)
	assert.Equal(t, 10*time.Minute, cfg.Cache.FavoriteCacheTTL)
	assert.Equal(t, "favorite-sync-workers", cfg.Worker.ConsumerGroup)
	assert.Equal(t, 3, cfg.Worker.MaxRetries)
	assert.Equal(t, 20, cfg.Worker.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Worker.StreamReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Worker.ShutdownTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("API_PORT", 9090)
	v.Set("STORAGE_DRIVER", "sqlite")
	v.Set("DB_HOST", "db")
	v.Set("DB_PORT", 5432)
	v.Set("DB_USER", "u")
	v.Set("DB_PASSWORD", "p")
	v.Set("DB_NAME", "favorites")
	v.Set("REDIS_HOST", "cache")
	v.Set("REDIS_PORT", 6380)
	v.Set("FAVORITE_CACHE_TTL", 30)

	cfg := fromViper(v)

	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=favorites sslmode=disable", cfg.GetDatabaseDSN())
	assert.Equal(t, "cache:6380", cfg.GetRedisAddr())
	assert.Equal(t, 30*time.Second, cfg.Cache.FavoriteCacheTTL)
}
