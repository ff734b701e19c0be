package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/transit-favorites/internal/config"
	"github.com/transit-favorites/internal/pkg/hub"
	"github.com/transit-favorites/internal/pkg/logger"
	"github.com/transit-favorites/internal/repository/cache"
	redisRepo "github.com/transit-favorites/internal/repository/redis"
	"github.com/transit-favorites/internal/repository/sqlstore"
	"github.com/transit-favorites/internal/usecase"
	"github.com/transit-favorites/internal/worker"
	"github.com/transit-favorites/internal/worker/favorite"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "favorites-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Favorite Sync Worker")
	log.Info("Configuration loaded",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Int("batch_size", cfg.Worker.BatchSize))

	// 3. Open storage
	openCtx, openCancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := sqlstore.Open(openCtx, cfg, log)
	openCancel()
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close storage", zap.Error(err))
		}
	}()

	// 4. Connect to Redis (воркеру Redis нужен всегда)
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	favoriteRepo := sqlstore.NewFavoriteRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log, cfg.Worker.StreamReadTimeout)

	// 6. Initialize use cases
	// наблюдатели живут в API процессе, здесь hub пустой
	favoriteUC := usecase.NewFavoriteUseCase(
		favoriteRepo,
		cacheRepo,
		streamRepo,
		hub.NewHub(log),
		log,
		cfg.Cache.FavoriteCacheTTL,
	)

	// 7. Initialize workers
	syncWorker := favorite.NewSyncWorker(
		streamRepo,
		favoriteUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		cfg.Worker.BatchSize,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, cfg.Worker.ShutdownTimeout)
	workerManager.Register(syncWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start workers
	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	failed := make(chan error, 1)
	go func() {
		failed <- workerManager.Wait()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Received shutdown signal")
	case err := <-failed:
		log.Error("Workers exited", zap.Error(err))
	}

	// Cancel context to stop workers
	cancel()

	// Stop worker manager
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
