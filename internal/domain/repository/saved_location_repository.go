package repository

import (
	"context"

	"github.com/transit-favorites/internal/domain"
)

// SavedLocationRepository - список использованных мест сети со счётчиками
type SavedLocationRepository interface {
	// FindByContent ищет место сети с теми же type, id, координатами, place и name
	FindByContent(ctx context.Context, network domain.NetworkID, loc domain.Location) (*domain.SavedLocation, error)

	// Record учитывает использование места в роли role: увеличивает счётчик
	// найденной строки (совпадение по содержимому, для адресов - по названию
	// и близким координатам) или вставляет новую. created=true - строка новая.
	Record(ctx context.Context, network domain.NetworkID, loc domain.Location, role domain.UsageRole) (saved *domain.SavedLocation, created bool, err error)

	// ListByNetwork возвращает места сети, самые частые в роли role первыми.
	// Пустая роль - по сумме всех счётчиков.
	ListByNetwork(ctx context.Context, network domain.NetworkID, role domain.UsageRole) ([]*domain.SavedLocation, error)

	// Delete удаляет место сети; false - такого uid в сети нет
	Delete(ctx context.Context, network domain.NetworkID, uid int64) (bool, error)
}
