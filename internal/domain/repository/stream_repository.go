package repository

import (
	"context"

	"github.com/transit-favorites/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// ConsumeBatch читает до count сообщений из стрима (не блокируя дольше таймаута)
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error)

	// ConsumePending перечитывает сообщения, выданные этому consumer, но не подтверждённые
	ConsumePending(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error)

	// AckMessages подтверждает обработку сообщений
	AckMessages(ctx context.Context, stream, group string, messageIDs []string) error

	// CreateConsumerGroup создаёт consumer group
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ReadStream читает сообщения после lastID без consumer group (лента для всех экземпляров)
	ReadStream(ctx context.Context, stream, lastID string, count int) ([]domain.StreamMessage, error)

	// StreamTail возвращает ID последнего сообщения стрима ("0-0" для пустого)
	StreamTail(ctx context.Context, stream string) (string, error)

	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
