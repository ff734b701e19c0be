package repository

import (
	"context"

	"github.com/transit-favorites/internal/domain"
)

// SlotWrite - итог записи в слот
type SlotWrite struct {
	UID     int64 // uid строки; 0 для удаления
	Existed bool  // строка была до записи
	Version int64 // версия слота после записи; 0, если ничего не изменилось
}

// FavoriteRepository - хранилище слотов избранного. Для каждой пары
// (kind, network) хранится не больше одной строки.
//
// У каждого слота есть версия: счётчик, который растёт на каждой вставке,
// замене и удалении. Версия не сбрасывается при очистке слота.
type FavoriteRepository interface {
	// Get возвращает текущую запись слота или nil, если слот пуст
	Get(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (*domain.FavoriteLocation, error)

	// Snapshot возвращает запись слота (или nil) вместе с её версией.
	// Версия никогда не новее возвращённого значения.
	Snapshot(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (*domain.FavoriteLocation, int64, error)

	// Upsert вставляет или целиком заменяет строку слота. uid сохраняется.
	Upsert(ctx context.Context, fav *domain.FavoriteLocation) (SlotWrite, error)

	// Count возвращает количество строк слота (0 или 1)
	Count(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (int, error)

	// Delete удаляет строку слота. Existed=false - слот уже был пуст.
	Delete(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (SlotWrite, error)

	// ListByNetwork возвращает все слоты сети
	ListByNetwork(ctx context.Context, network domain.NetworkID) ([]*domain.FavoriteLocation, error)
}
