package favorite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/domain/repository"
	apperrors "github.com/transit-favorites/internal/pkg/errors"
	"github.com/transit-favorites/internal/pkg/validator"
	"github.com/transit-favorites/internal/usecase"
	"github.com/transit-favorites/internal/worker"
)

const (
	defaultBatchSize  = 20                     // максимум сообщений за раз
	defaultRetryDelay = 500 * time.Millisecond // первая пауза перед повтором записи
	emptyQueueSleep   = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep        = time.Second            // пауза после ошибки batch
)

var (
	_ worker.Worker = (*SyncWorker)(nil)
	_ worker.Worker = (*ChangeRelay)(nil)
)

// FavoriteWriter - операции записи, которые применяет воркер
type FavoriteWriter interface {
	PutFavorite(ctx context.Context, fav domain.FavoriteLocation) (*usecase.WriteResult, error)
	DeleteFavorite(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (domain.ChangeType, error)
}

// SyncWorker применяет события из stream:favorite:sync к хранилищу избранного.
// Сообщения обрабатываются строго по порядку: при ошибке хранилища batch
// прерывается, и воркер сначала дочитывает свои неподтверждённые сообщения.
type SyncWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	writer     FavoriteWriter
	maxRetries int
	batchSize  int
	retryDelay time.Duration
}

// NewSyncWorker создает новый SyncWorker
func NewSyncWorker(
	streamRepo repository.StreamRepository,
	writer FavoriteWriter,
	consumerGroup string,
	maxRetries int,
	batchSize int,
	logger *zap.Logger,
) *SyncWorker {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &SyncWorker{
		BaseWorker: worker.NewBaseWorker("favorite-sync", consumerGroup, logger),
		streamRepo: streamRepo,
		writer:     writer,
		maxRetries: maxRetries,
		batchSize:  batchSize,
		retryDelay: defaultRetryDelay,
	}
}

// Start запускает воркер
func (w *SyncWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting SyncWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("batch_size", w.batchSize),
		zap.Int("max_retries", w.maxRetries))

	// Создаем consumer group
	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamFavoriteSync, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// после рестарта сначала дочитываем то, что было выдано нам раньше
	pending := true

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx, pending)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err), zap.Bool("pending", pending))
				pending = true
				w.Sleep(ctx, errorSleep)
				continue
			}

			if processed == 0 {
				if pending {
					pending = false
					continue
				}
				w.Sleep(ctx, emptyQueueSleep)
			}
		}
	}
}

// processBatch читает и применяет batch сообщений.
// Возвращает количество подтверждённых сообщений.
func (w *SyncWorker) processBatch(ctx context.Context, pending bool) (int, error) {
	logger := w.Logger()

	// 1. Читаем сообщения
	var messages []domain.StreamMessage
	var err error
	if pending {
		messages, err = w.streamRepo.ConsumePending(ctx, domain.StreamFavoriteSync, w.ConsumerGroup(), w.ConsumerName(), w.batchSize)
	} else {
		messages, err = w.streamRepo.ConsumeBatch(ctx, domain.StreamFavoriteSync, w.ConsumerGroup(), w.ConsumerName(), w.batchSize)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil // очередь пуста
	}

	logger.Debug("Processing batch",
		zap.Int("message_count", len(messages)),
		zap.Bool("pending", pending))

	// 2. Применяем по одному, в порядке стрима
	acked := make([]string, 0, len(messages))
	var batchErr error

	for _, msg := range messages {
		event, err := w.parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// ACK битое сообщение чтобы не застревало
			acked = append(acked, msg.ID)
			continue
		}

		if err := w.applyWithRetry(ctx, event); err != nil {
			if apperrors.IsValidation(err) {
				logger.Warn("Sync event rejected, skipping",
					zap.String("message_id", msg.ID),
					zap.String("event_id", event.EventID.String()),
					zap.Error(err))
				acked = append(acked, msg.ID)
				continue
			}

			// остальные сообщения batch остаются в pending
			batchErr = fmt.Errorf("apply message %s: %w", msg.ID, err)
			break
		}

		acked = append(acked, msg.ID)
	}

	// 3. ACK обработанных сообщений
	if err := w.streamRepo.AckMessages(ctx, domain.StreamFavoriteSync, w.ConsumerGroup(), acked); err != nil {
		logger.Error("Failed to ack messages", zap.Error(err))
		// Не критично - сообщения будут переобработаны
	}

	if batchErr != nil {
		return len(acked), batchErr
	}

	logger.Debug("Batch processed", zap.Int("processed", len(acked)))
	return len(acked), nil
}

// applyWithRetry повторяет запись при ошибках хранилища с экспоненциальной паузой
func (w *SyncWorker) applyWithRetry(ctx context.Context, event *domain.FavoriteSyncEvent) error {
	delay := w.retryDelay

	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			w.Logger().Warn("Retrying sync event",
				zap.String("event_id", event.EventID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))

			if !w.Sleep(ctx, delay) {
				return err
			}
			delay *= 2
		}

		err = w.apply(ctx, event)
		if err == nil || !apperrors.IsPersistence(err) {
			return err
		}
	}
	return err
}

func (w *SyncWorker) apply(ctx context.Context, event *domain.FavoriteSyncEvent) error {
	switch event.Action {
	case domain.SyncActionUpsert:
		fav := domain.NewFavoriteLocation(event.Kind, event.NetworkID, *event.Location)
		res, err := w.writer.PutFavorite(ctx, fav)
		if err != nil {
			return err
		}
		w.Logger().Info("Favorite synced",
			zap.String("slot", fav.Slot().String()),
			zap.Int64("uid", res.UID),
			zap.String("change", string(res.Change)))
		return nil

	case domain.SyncActionRemove:
		change, err := w.writer.DeleteFavorite(ctx, event.Kind, event.NetworkID)
		if err != nil {
			return err
		}
		w.Logger().Info("Favorite sync removal",
			zap.String("kind", string(event.Kind)),
			zap.String("network_id", string(event.NetworkID)),
			zap.String("change", string(change)))
		return nil

	default:
		return apperrors.NewValidationError("action", "unknown sync action")
	}
}

// parseMessage парсит и валидирует сообщение из стрима
func (w *SyncWorker) parseMessage(msg domain.StreamMessage) (*domain.FavoriteSyncEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("missing or empty 'data' field")
	}

	var event domain.FavoriteSyncEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if err := validator.ValidateAppError(event); err != nil {
		return nil, err
	}
	if event.Action == domain.SyncActionUpsert && event.Location == nil {
		return nil, apperrors.NewValidationError("location", "required for upsert")
	}

	return &event, nil
}
