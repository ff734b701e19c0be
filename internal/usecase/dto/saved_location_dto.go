package dto

import (
	"time"

	"github.com/transit-favorites/internal/domain"
	apperrors "github.com/transit-favorites/internal/pkg/errors"
)

// RecordUseRequest - тело POST /networks/:network/saved
type RecordUseRequest struct {
	Role     string          `json:"role" validate:"required,usage_role" example:"FROM"`
	Location LocationRequest `json:"location"`
}

// ToDomain возвращает роль и место
func (r RecordUseRequest) ToDomain() (domain.UsageRole, domain.Location, error) {
	role, ok := domain.ParseUsageRole(r.Role)
	if !ok {
		return "", domain.Location{}, apperrors.NewValidationError("role", "unknown usage role")
	}
	loc, err := r.Location.ToLocation()
	if err != nil {
		return "", domain.Location{}, err
	}
	return role, loc, nil
}

// SavedLocationResponse - использованное место со счётчиками
type SavedLocationResponse struct {
	UID        int64          `json:"uid" example:"1"`
	NetworkID  string         `json:"network_id" example:"DB"`
	Type       string         `json:"type" example:"STATION"`
	ID         *string        `json:"id"`
	Point      *PointResponse `json:"point"`
	Place      *string        `json:"place"`
	Name       *string        `json:"name"`
	Products   []string       `json:"products"`
	ShortName  string         `json:"short_name" example:"Berlin, Hauptbahnhof"`
	FromCount  int            `json:"from_count" example:"3"`
	ViaCount   int            `json:"via_count" example:"0"`
	ToCount    int            `json:"to_count" example:"1"`
	TotalCount int            `json:"total_count" example:"4"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RecordUseResponse - результат POST
type RecordUseResponse struct {
	Created bool                   `json:"created"`
	Saved   *SavedLocationResponse `json:"saved"`
}

// ConvertSavedLocation конвертирует место списка
func ConvertSavedLocation(s *domain.SavedLocation) *SavedLocationResponse {
	if s == nil {
		return nil
	}

	return &SavedLocationResponse{
		UID:        s.UID,
		NetworkID:  string(s.NetworkID),
		Type:       string(s.Type),
		ID:         s.ID,
		Point:      convertPoint(s.Point),
		Place:      s.Place,
		Name:       s.Name,
		Products:   convertProducts(s.Products),
		ShortName:  s.UniqueShortName(),
		FromCount:  s.FromCount,
		ViaCount:   s.ViaCount,
		ToCount:    s.ToCount,
		TotalCount: s.Count(""),
		UpdatedAt:  s.UpdatedAt.UTC(),
	}
}

// ConvertSavedLocations конвертирует список
func ConvertSavedLocations(list []*domain.SavedLocation) []*SavedLocationResponse {
	out := make([]*SavedLocationResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ConvertSavedLocation(s))
	}
	return out
}
