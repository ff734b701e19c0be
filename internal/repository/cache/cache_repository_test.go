package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/repository/cache"
)

// getTestRedis creates a Redis wrapper for testing
func getTestRedis(t *testing.T) *cache.Redis {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	r := cache.NewRedisFromClient(client, zap.NewNop())
	t.Cleanup(func() { r.Close() })
	return r
}

func TestCacheRepository_FavoriteRoundTrip(t *testing.T) {
	r := getTestRedis(t)
	repo := cache.NewCacheRepository(r)
	ctx := context.Background()

	slot := domain.SlotKey{Kind: domain.FavoriteKindWork, NetworkID: domain.NetworkVBB}
	t.Cleanup(func() { _ = repo.InvalidateFavorite(ctx, slot) })

	// Miss
	fav, found, err := repo.GetFavorite(ctx, slot)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, fav)

	// Value
	p := domain.PointFrom1E6(52521918, 13413215)
	stored := domain.NewFavoriteLocation(slot.Kind, slot.NetworkID, domain.NewLocation(
		domain.LocationTypeStation, domain.StringPtr("900100003"), &p,
		domain.StringPtr("Berlin"), domain.StringPtr("Alexanderplatz"),
		domain.ProductSetPtr(domain.NewProductSet(domain.ProductSubway, domain.ProductTram)),
	))
	stored.UID = 42

	ok, err := repo.SetFavorite(ctx, slot, &stored, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	fav, found, err = repo.GetFavorite(ctx, slot)
	require.NoError(t, err)
	assert.True(t, found)
	require.NotNil(t, fav)
	assert.Equal(t, int64(42), fav.UID)
	assert.True(t, stored.Location.Equal(fav.Location))

	// Cached absence
	ok, err = repo.SetFavorite(ctx, slot, nil, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	fav, found, err = repo.GetFavorite(ctx, slot)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, fav)

	// Invalidate
	require.NoError(t, repo.InvalidateFavorite(ctx, slot))

	_, found, err = repo.GetFavorite(ctx, slot)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheRepository_OlderVersionDoesNotOverwrite(t *testing.T) {
	r := getTestRedis(t)
	repo := cache.NewCacheRepository(r)
	ctx := context.Background()

	slot := domain.SlotKey{Kind: domain.FavoriteKindHome, NetworkID: domain.NetworkVBB}
	require.NoError(t, repo.InvalidateFavorite(ctx, slot))
	t.Cleanup(func() { _ = repo.InvalidateFavorite(ctx, slot) })

	newer := domain.NewFavoriteLocation(slot.Kind, slot.NetworkID,
		domain.NewLocation(domain.LocationTypeAny, nil, nil, nil, domain.StringPtr("newer"), nil))
	older := domain.NewFavoriteLocation(slot.Kind, slot.NetworkID,
		domain.NewLocation(domain.LocationTypeAny, nil, nil, nil, domain.StringPtr("older"), nil))

	ok, err := repo.SetFavorite(ctx, slot, &newer, 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// запоздавшее заполнение кеша после чтения старой строки
	ok, err = repo.SetFavorite(ctx, slot, &older, 4, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.SetFavorite(ctx, slot, nil, 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "same version is not newer")

	fav, found, err := repo.GetFavorite(ctx, slot)
	require.NoError(t, err)
	assert.True(t, found)
	require.NotNil(t, fav)
	assert.Equal(t, "newer", *fav.Name)

	// после удаления (версия 6) кешируется отсутствие
	ok, err = repo.SetFavorite(ctx, slot, nil, 6, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	fav, found, err = repo.GetFavorite(ctx, slot)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, fav)
}

func TestCacheRepository_LegacyValueIsMiss(t *testing.T) {
	r := getTestRedis(t)
	repo := cache.NewCacheRepository(r)
	ctx := context.Background()

	slot := domain.SlotKey{Kind: domain.FavoriteKindWork, NetworkID: domain.NetworkMVV}
	t.Cleanup(func() { _ = repo.InvalidateFavorite(ctx, slot) })

	require.NoError(t, r.Client().Set(ctx, "favorite:"+slot.String(), "null", time.Minute).Err())

	_, found, err := repo.GetFavorite(ctx, slot)
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := repo.SetFavorite(ctx, slot, nil, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "unversioned value is overwritten")
}
