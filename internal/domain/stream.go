package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamFavoriteSync    = "stream:favorite:sync"
	StreamFavoriteChanged = "stream:favorite:changed"
)

// SyncAction - действие фоновой синхронизации
type SyncAction string

const (
	SyncActionUpsert SyncAction = "upsert"
	SyncActionRemove SyncAction = "remove"
)

// FavoriteSyncEvent - входящее событие синхронизации избранного
type FavoriteSyncEvent struct {
	EventID   uuid.UUID    `json:"event_id"`
	Action    SyncAction   `json:"action" validate:"required,oneof=upsert remove"`
	Kind      FavoriteKind `json:"kind" validate:"required,favorite_kind"`
	NetworkID NetworkID    `json:"network_id" validate:"required,network_id"`
	Location  *Location    `json:"location,omitempty" validate:"required_if=Action upsert"`
}

// FavoriteChangedEvent - исходящее событие об изменении слота
type FavoriteChangedEvent struct {
	EventID    uuid.UUID         `json:"event_id"`
	Change     ChangeType        `json:"change"`
	Kind       FavoriteKind      `json:"kind"`
	NetworkID  NetworkID         `json:"network_id"`
	Favorite   *FavoriteLocation `json:"favorite,omitempty"`
	Version    int64             `json:"version"` // версия слота после записи
	OccurredAt time.Time         `json:"occurred_at"`
	Source     string            `json:"source"` // экземпляр, выполнивший запись
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
