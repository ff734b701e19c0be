package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	redisRepo "github.com/transit-favorites/internal/repository/redis"
)

const (
	testSyncStream    = "test:stream:favorite:sync"
	testChangedStream = "test:stream:favorite:changed"
)

// getTestRedisClient creates a Redis client for testing
func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     "localhost:6379",
		Password: "",
		DB:       1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	// Clean up any existing test streams
	client.Del(ctx, testSyncStream, testChangedStream)
	t.Cleanup(func() {
		client.Del(context.Background(), testSyncStream, testChangedStream)
		client.Close()
	})

	return client
}

func TestStreamRepository_CreateConsumerGroup(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop(), 100*time.Millisecond)
	ctx := context.Background()

	err := repo.CreateConsumerGroup(ctx, testSyncStream, "test-group")
	require.NoError(t, err)

	groups, err := client.XInfoGroups(ctx, testSyncStream).Result()
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, "test-group", groups[0].Name)

	// Creating again should not error (BUSYGROUP handled)
	err = repo.CreateConsumerGroup(ctx, testSyncStream, "test-group")
	assert.NoError(t, err)
}

func TestStreamRepository_PublishToStream(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop(), 100*time.Millisecond)
	ctx := context.Background()

	eventID := uuid.New()
	event := &domain.FavoriteChangedEvent{
		EventID:    eventID,
		Change:     domain.ChangeRemoved,
		Kind:       domain.FavoriteKindWork,
		NetworkID:  domain.NetworkDB,
		Version:    3,
		OccurredAt: time.Now(),
	}

	err := repo.PublishToStream(ctx, testChangedStream, event)
	require.NoError(t, err)

	messages, err := client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{testChangedStream, "0"},
		Count:   1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Messages, 1)

	dataStr, ok := messages[0].Messages[0].Values["data"].(string)
	require.True(t, ok)

	var received domain.FavoriteChangedEvent
	require.NoError(t, json.Unmarshal([]byte(dataStr), &received))
	assert.Equal(t, eventID, received.EventID)
	assert.Equal(t, domain.ChangeRemoved, received.Change)
	assert.Nil(t, received.Favorite)
	assert.Equal(t, int64(3), received.Version)
}

func TestStreamRepository_ConsumeAndAck(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop(), 100*time.Millisecond)
	ctx := context.Background()

	group := "test-consume-group"
	require.NoError(t, repo.CreateConsumerGroup(ctx, testSyncStream, group))

	// Nothing yet: returns empty after block timeout
	messages, err := repo.ConsumeBatch(ctx, testSyncStream, group, "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, messages)

	for _, action := range []domain.SyncAction{domain.SyncActionUpsert, domain.SyncActionRemove} {
		err := repo.PublishToStream(ctx, testSyncStream, &domain.FavoriteSyncEvent{
			EventID:   uuid.New(),
			Action:    action,
			Kind:      domain.FavoriteKindHome,
			NetworkID: domain.NetworkBVG,
		})
		require.NoError(t, err)
	}

	messages, err = repo.ConsumeBatch(ctx, testSyncStream, group, "c1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	var first domain.FavoriteSyncEvent
	require.NoError(t, json.Unmarshal([]byte(messages[0].Data), &first))
	assert.Equal(t, domain.SyncActionUpsert, first.Action)

	pending, err := client.XPending(ctx, testSyncStream, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Count)

	// неподтверждённые сообщения можно перечитать
	pendingMessages, err := repo.ConsumePending(ctx, testSyncStream, group, "c1", 10)
	require.NoError(t, err)
	require.Len(t, pendingMessages, 2)
	assert.Equal(t, messages[0].ID, pendingMessages[0].ID)

	// у другого consumer своих неподтверждённых нет
	other, err := repo.ConsumePending(ctx, testSyncStream, group, "c2", 10)
	require.NoError(t, err)
	assert.Empty(t, other)

	err = repo.AckMessages(ctx, testSyncStream, group, []string{messages[0].ID, messages[1].ID})
	require.NoError(t, err)

	pending, err = client.XPending(ctx, testSyncStream, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)

	// Empty ack is a no-op
	assert.NoError(t, repo.AckMessages(ctx, testSyncStream, group, nil))
}

func TestStreamRepository_TailAndReadStream(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop(), 100*time.Millisecond)
	ctx := context.Background()

	tail, err := repo.StreamTail(ctx, testChangedStream)
	require.NoError(t, err)
	assert.Equal(t, "0-0", tail)

	require.NoError(t, repo.PublishToStream(ctx, testChangedStream, map[string]string{"n": "1"}))
	tail, err = repo.StreamTail(ctx, testChangedStream)
	require.NoError(t, err)
	assert.NotEqual(t, "0-0", tail)

	// после хвоста ничего нет: чтение ждёт blockTimeout и возвращает пусто
	msgs, err := repo.ReadStream(ctx, testChangedStream, tail, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, repo.PublishToStream(ctx, testChangedStream, map[string]string{"n": "2"}))
	require.NoError(t, repo.PublishToStream(ctx, testChangedStream, map[string]string{"n": "3"}))

	msgs, err = repo.ReadStream(ctx, testChangedStream, tail, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.JSONEq(t, `{"n":"2"}`, msgs[0].Data)
	assert.JSONEq(t, `{"n":"3"}`, msgs[1].Data)

	// каждый читатель видит всю ленту
	all, err := repo.ReadStream(ctx, testChangedStream, "0-0", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
