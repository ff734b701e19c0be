package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/domain/repository"
	"go.uber.org/zap"
)

const favoriteKeyPrefix = "favorite:"

// setIfNewerScript записывает значение, только если в кеше нет версии
// такой же или новее. ARGV: значение, версия, ttl в мс (0 - без срока).
var setIfNewerScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local ok, decoded = pcall(cjson.decode, current)
	if ok and type(decoded) == 'table' then
		local cached = tonumber(decoded['version'])
		if cached and cached >= tonumber(ARGV[2]) then
			return 0
		end
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// cachedFavorite - значение слота в кеше. favorite=null - слот пуст.
type cachedFavorite struct {
	Version  *int64                   `json:"version"`
	Favorite *domain.FavoriteLocation `json:"favorite"`
}

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func favoriteKey(slot domain.SlotKey) string {
	return favoriteKeyPrefix + slot.String()
}

func (r *cacheRepository) GetFavorite(ctx context.Context, slot domain.SlotKey) (*domain.FavoriteLocation, bool, error) {
	key := favoriteKey(slot)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var cached cachedFavorite
	if err := json.Unmarshal(data, &cached); err != nil || cached.Version == nil {
		// битое или старое значение считаем промахом, его перезапишет следующая запись
		r.logger.Warn("Failed to decode cached favorite", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}

	r.logger.Debug("Cache hit",
		zap.String("key", key),
		zap.Int64("version", *cached.Version),
		zap.Bool("absent", cached.Favorite == nil))
	return cached.Favorite, true, nil
}

func (r *cacheRepository) SetFavorite(ctx context.Context, slot domain.SlotKey, fav *domain.FavoriteLocation, version int64, ttl time.Duration) (bool, error) {
	key := favoriteKey(slot)

	data, err := json.Marshal(cachedFavorite{Version: &version, Favorite: fav})
	if err != nil {
		return false, fmt.Errorf("failed to marshal favorite: %w", err)
	}

	stored, err := setIfNewerScript.Run(ctx, r.client, []string{key}, data, version, ttl.Milliseconds()).Int()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set",
		zap.String("key", key),
		zap.Int64("version", version),
		zap.Bool("stored", stored == 1),
		zap.Duration("ttl", ttl))
	return stored == 1, nil
}

func (r *cacheRepository) InvalidateFavorite(ctx context.Context, slot domain.SlotKey) error {
	key := favoriteKey(slot)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}
