package main

// @title Transit Favorites API
// @version 1.0.0
// @description Хранилище избранных мест пользователя (дом и работа) для каждой транспортной сети.
// @description
// @description Основные возможности:
// @description - Чтение, запись и удаление слота HOME/WORK отдельно для каждой сети
// @description - Подписка на изменения слота (Server-Sent Events)
// @description - Список заполненных слотов сети

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/transit-favorites/docs"
	"github.com/transit-favorites/internal/config"
	httpDelivery "github.com/transit-favorites/internal/delivery/http"
	"github.com/transit-favorites/internal/delivery/http/handler"
	"github.com/transit-favorites/internal/domain/repository"
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

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "favorites-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Transit Favorites API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
	)

	// 3. Open storage
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqlstore.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close storage", zap.Error(err))
		}
	}()

	checkers := map[string]handler.HealthChecker{
		"database": db,
	}

	// 4. Connect to Redis (необязательно: кеш и лента изменений)
	var (
		cacheRepo  repository.CacheRepository
		streamRepo repository.StreamRepository
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		cacheRepo = cache.NewCacheRepository(redisClient)
		streamRepo = redisRepo.NewStreamRepository(redisClient.Client(), log, cfg.Worker.StreamReadTimeout)
		checkers["redis"] = redisClient

		log.Info("Redis connected")
	}

	// 5. Health checks
	for name, checker := range checkers {
		if err := checker.Health(ctx); err != nil {
			log.Fatal("Health check failed", zap.String("component", name), zap.Error(err))
		}
	}
	log.Info("All connections healthy")

	// 6. Initialize repositories and use cases
	favoriteRepo := sqlstore.NewFavoriteRepository(db, log)
	savedRepo := sqlstore.NewSavedLocationRepository(db, log)
	watchers := hub.NewHub(log)

	favoriteUC := usecase.NewFavoriteUseCase(
		favoriteRepo,
		cacheRepo,
		streamRepo,
		watchers,
		log,
		cfg.Cache.FavoriteCacheTTL,
	)

	savedUC := usecase.NewSavedLocationUseCase(savedRepo, log)

	log.Info("Use cases initialized")

	// 7. Change feed relay: изменения воркера и других экземпляров доходят до наблюдателей
	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()

	var relays *worker.WorkerManager
	if streamRepo != nil {
		relays = worker.NewWorkerManager(log, cfg.Worker.ShutdownTimeout)
		relays.Register(favorite.NewChangeRelay(streamRepo, favoriteUC, cfg.Worker.BatchSize, log))
		if err := relays.Start(relayCtx); err != nil {
			log.Fatal("Failed to start change relay", zap.Error(err))
		}
	}

	// 8. Initialize HTTP handlers and server
	favoriteHandler := handler.NewFavoriteHandler(favoriteUC, log)
	savedHandler := handler.NewSavedLocationHandler(savedUC, log)
	healthHandler := handler.NewHealthHandler(checkers, log)

	server := httpDelivery.NewServer(cfg, log, favoriteHandler, savedHandler, healthHandler)

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	if relays != nil {
		relayCancel()
		if err := relays.Stop(); err != nil {
			log.Error("Error stopping change relay", zap.Error(err))
		}
	}

	// SSE соединения не завершатся сами
	watchers.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
