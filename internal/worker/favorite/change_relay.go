package favorite

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/domain/repository"
	"github.com/transit-favorites/internal/worker"
)

// ChangeApplier доставляет чужие изменения локальным наблюдателям
type ChangeApplier interface {
	ApplyRemoteChange(ctx context.Context, event *domain.FavoriteChangedEvent) error
}

// ChangeRelay читает stream:favorite:changed (без consumer group: ленту
// видит каждый экземпляр API) и передаёт изменения других экземпляров в hub.
type ChangeRelay struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	applier    ChangeApplier
	batchSize  int
}

// NewChangeRelay создает новый ChangeRelay
func NewChangeRelay(
	streamRepo repository.StreamRepository,
	applier ChangeApplier,
	batchSize int,
	logger *zap.Logger,
) *ChangeRelay {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &ChangeRelay{
		BaseWorker: worker.NewBaseWorker("favorite-change-relay", "", logger),
		streamRepo: streamRepo,
		applier:    applier,
		batchSize:  batchSize,
	}
}

// Start запускает чтение ленты с её текущего конца
func (r *ChangeRelay) Start(ctx context.Context) error {
	logger := r.Logger()

	lastID, err := r.streamRepo.StreamTail(ctx, domain.StreamFavoriteChanged)
	if err != nil {
		logger.Error("Failed to read change feed tail", zap.Error(err))
		return fmt.Errorf("failed to read change feed tail: %w", err)
	}

	logger.Info("Starting ChangeRelay", zap.String("from_id", lastID))

	for {
		select {
		case <-r.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			messages, err := r.streamRepo.ReadStream(ctx, domain.StreamFavoriteChanged, lastID, r.batchSize)
			if err != nil {
				logger.Error("Failed to read change feed", zap.Error(err))
				r.Sleep(ctx, errorSleep)
				continue
			}

			if len(messages) == 0 {
				r.Sleep(ctx, emptyQueueSleep)
				continue
			}

			for _, msg := range messages {
				lastID = msg.ID
				r.relay(ctx, msg)
			}
		}
	}
}

func (r *ChangeRelay) relay(ctx context.Context, msg domain.StreamMessage) {
	var event domain.FavoriteChangedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		r.Logger().Warn("Failed to parse change event, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return
	}

	if err := r.applier.ApplyRemoteChange(ctx, &event); err != nil {
		r.Logger().Warn("Failed to apply change event",
			zap.String("message_id", msg.ID),
			zap.String("event_id", event.EventID.String()),
			zap.Error(err))
	}
}
