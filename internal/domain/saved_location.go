package domain

import (
	"strings"
	"time"
)

// UsageRole - роль места в поиске маршрута
type UsageRole string

const (
	UsageFrom UsageRole = "FROM"
	UsageVia  UsageRole = "VIA"
	UsageTo   UsageRole = "TO"
)

// ValidUsageRoles returns list of usage roles
func ValidUsageRoles() []UsageRole {
	return []UsageRole{UsageFrom, UsageVia, UsageTo}
}

func (r UsageRole) IsValid() bool {
	for _, v := range ValidUsageRoles() {
		if v == r {
			return true
		}
	}
	return false
}

// ParseUsageRole принимает значения в любом регистре ("from", "FROM")
func ParseUsageRole(s string) (UsageRole, bool) {
	r := UsageRole(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// SavedLocation - место, которое уже использовалось в поиске в этой сети,
// со счётчиками по ролям. Список сети упорядочен по частоте использования.
type SavedLocation struct {
	UID       int64     `json:"uid"`
	NetworkID NetworkID `json:"network_id"`
	Location
	FromCount int       `json:"from_count"`
	ViaCount  int       `json:"via_count"`
	ToCount   int       `json:"to_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Count - сколько раз место использовалось в роли role; пустая роль - всего
func (s SavedLocation) Count(role UsageRole) int {
	switch role {
	case UsageFrom:
		return s.FromCount
	case UsageVia:
		return s.ViaCount
	case UsageTo:
		return s.ToCount
	default:
		return s.FromCount + s.ViaCount + s.ToCount
	}
}

// Use увеличивает счётчик роли
func (s *SavedLocation) Use(role UsageRole) {
	switch role {
	case UsageFrom:
		s.FromCount++
	case UsageVia:
		s.ViaCount++
	case UsageTo:
		s.ToCount++
	}
}

// CanBeSaved - голые координаты (GPS, точка на карте) в список не попадают
func (l Location) CanBeSaved() bool {
	return l.Type != LocationTypeCoordinate
}

// SameAddress - сохранённый адрес с тем же названием и почти теми же
// координатами. Так повторный поиск адреса не плодит дубликаты.
func (s SavedLocation) SameAddress(l Location) bool {
	if s.Type != LocationTypeAddress || s.Name == nil || l.Name == nil || *s.Name != *l.Name {
		return false
	}
	if s.Point == nil || l.Point == nil {
		return false
	}
	return s.Point.SamePlace(*l.Point)
}
