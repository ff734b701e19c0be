//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/transit-favorites/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	kind := flag.String("kind", "HOME", "favorite kind (HOME | WORK)")
	network := flag.String("network", "DB", "network id")
	remove := flag.Bool("remove", false, "publish a remove event instead of upsert")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Тестовое событие (Berlin Hbf)
	event := domain.FavoriteSyncEvent{
		EventID:   uuid.New(),
		Action:    domain.SyncActionUpsert,
		Kind:      domain.FavoriteKind(*kind),
		NetworkID: domain.NetworkID(*network),
	}
	if *remove {
		event.Action = domain.SyncActionRemove
	} else {
		p := domain.PointFrom1E6(52525589, 13369548)
		loc := domain.NewLocation(domain.LocationTypeStation, domain.StringPtr("8011160"), &p,
			domain.StringPtr("Berlin"), domain.StringPtr("Hauptbahnhof"), domain.ProductSetPtr(domain.AllProducts))
		event.Location = &loc
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Запоминаем хвост ленты изменений до публикации
	lastID := "0"
	if tail, err := client.XRevRangeN(ctx, domain.StreamFavoriteChanged, "+", "-", 1).Result(); err == nil && len(tail) > 0 {
		lastID = tail[0].ID
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamFavoriteSync,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamFavoriteSync)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Event ID: %s\n", event.EventID)
	fmt.Printf("   Slot: %s:%s (%s)\n", event.Kind, event.NetworkID, event.Action)

	fmt.Printf("\nWaiting for change in %s...\n", domain.StreamFavoriteChanged)

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamFavoriteChanged, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Fatalf("Failed to read changes: %v", err)
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID

				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var changed domain.FavoriteChangedEvent
				if err := json.Unmarshal([]byte(dataStr), &changed); err != nil {
					continue
				}

				if changed.Kind == event.Kind && changed.NetworkID == event.NetworkID {
					fmt.Printf("\nChange received!\n")
					prettyJSON, _ := json.MarshalIndent(changed, "", "  ")
					fmt.Printf("%s\n", prettyJSON)
					return
				}
			}
		}
	}

	fmt.Println("Timeout waiting for change (removing an empty slot emits nothing)")
}
