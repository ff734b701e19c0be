package repository

import (
	"context"
	"time"

	"github.com/transit-favorites/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// GetFavorite получает слот из кеша. found=false - промах кеша;
	// found=true и fav=nil - закешированное отсутствие.
	GetFavorite(ctx context.Context, slot domain.SlotKey) (fav *domain.FavoriteLocation, found bool, err error)

	// SetFavorite сохраняет значение слота версии version (nil тоже кешируется).
	// Если в кеше уже лежит версия не старше, ничего не пишет и возвращает false.
	SetFavorite(ctx context.Context, slot domain.SlotKey, fav *domain.FavoriteLocation, version int64, ttl time.Duration) (bool, error)

	// InvalidateFavorite удаляет слот из кеша
	InvalidateFavorite(ctx context.Context, slot domain.SlotKey) error
}
