package dto

import (
	"time"

	"github.com/transit-favorites/internal/domain"
	apperrors "github.com/transit-favorites/internal/pkg/errors"
)

// LocationRequest - место в теле запроса.
// Отсутствующее поле и null - нет значения; "products": [] - пустое множество.
type LocationRequest struct {
	Type     string        `json:"type" validate:"required,location_type" example:"STATION"`
	ID       *string       `json:"id,omitempty" validate:"omitempty,max=256" example:"8011160"`
	Point    *PointRequest `json:"point,omitempty" validate:"omitempty"`
	Place    *string       `json:"place,omitempty" validate:"omitempty,max=512" example:"Berlin"`
	Name     *string       `json:"name,omitempty" validate:"omitempty,max=512" example:"Hauptbahnhof"`
	Products []string      `json:"products,omitempty" validate:"omitempty,max=16"`
}

// SetFavoriteRequest - тело PUT /favorites/:kind/:network
type SetFavoriteRequest struct {
	LocationRequest
}

// PointRequest - координаты в микроградусах (градусы * 1e6) или в градусах.
// Если заданы lat_deg/lon_deg, lat/lon не используются.
type PointRequest struct {
	Lat    int32    `json:"lat" validate:"min=-90000000,max=90000000" example:"52525589"`
	Lon    int32    `json:"lon" validate:"min=-180000000,max=180000000" example:"13369548"`
	LatDeg *float64 `json:"lat_deg,omitempty" validate:"omitempty,min=-90,max=90" example:"52.525589"`
	LonDeg *float64 `json:"lon_deg,omitempty" validate:"omitempty,min=-180,max=180" example:"13.369548"`
}

// ToPoint собирает точку
func (p PointRequest) ToPoint() (domain.Point, error) {
	if p.LatDeg == nil && p.LonDeg == nil {
		return domain.PointFrom1E6(p.Lat, p.Lon), nil
	}
	if p.LatDeg == nil || p.LonDeg == nil {
		return domain.Point{}, apperrors.NewValidationError("point", "lat_deg and lon_deg must be set together")
	}

	point, err := domain.PointFromDegrees(*p.LatDeg, *p.LonDeg)
	if err != nil {
		if locErr, ok := err.(*domain.LocationError); ok {
			return domain.Point{}, apperrors.NewValidationError("point."+locErr.Field, locErr.Reason)
		}
		return domain.Point{}, apperrors.NewValidationError("point", err.Error())
	}
	return point, nil
}

// ToLocation собирает значение места
func (r LocationRequest) ToLocation() (domain.Location, error) {
	var point *domain.Point
	if r.Point != nil {
		p, err := r.Point.ToPoint()
		if err != nil {
			return domain.Location{}, err
		}
		point = &p
	}

	var products *domain.ProductSet
	if r.Products != nil {
		set := domain.NewProductSet()
		for _, name := range r.Products {
			p, err := domain.ProductFromName(name)
			if err != nil {
				return domain.Location{}, apperrors.NewValidationError("products", err.Error())
			}
			set |= domain.ProductSet(p)
		}
		products = &set
	}

	return domain.NewLocation(domain.LocationType(r.Type), r.ID, point, r.Place, r.Name, products), nil
}

// ToDomain собирает запись избранного для слота
func (r SetFavoriteRequest) ToDomain(kind domain.FavoriteKind, network domain.NetworkID) (domain.FavoriteLocation, error) {
	loc, err := r.ToLocation()
	if err != nil {
		return domain.FavoriteLocation{}, err
	}
	return domain.NewFavoriteLocation(kind, network, loc), nil
}

// FavoriteResponse - избранное место в ответе API
type FavoriteResponse struct {
	UID        int64          `json:"uid" example:"1"`
	Kind       string         `json:"kind" example:"WORK"`
	NetworkID  string         `json:"network_id" example:"DB"`
	Type       string         `json:"type" example:"STATION"`
	ID         *string        `json:"id"`
	Point      *PointResponse `json:"point"`
	Place      *string        `json:"place"`
	Name       *string        `json:"name"`
	Products   []string       `json:"products"`
	ShortName  string         `json:"short_name" example:"Berlin, Hauptbahnhof"`
	Identified bool           `json:"identified"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PointResponse - координаты в микроградусах и в градусах
type PointResponse struct {
	Lat    int32   `json:"lat" example:"52525589"`
	Lon    int32   `json:"lon" example:"13369548"`
	LatDeg float64 `json:"lat_deg" example:"52.525589"`
	LonDeg float64 `json:"lon_deg" example:"13.369548"`
}

// ConvertFavorite - nil остаётся nil (слот пуст)
func ConvertFavorite(f *domain.FavoriteLocation) *FavoriteResponse {
	if f == nil {
		return nil
	}

	return &FavoriteResponse{
		UID:        f.UID,
		Kind:       string(f.Kind),
		NetworkID:  string(f.NetworkID),
		Type:       string(f.Type),
		ID:         f.ID,
		Place:      f.Place,
		Name:       f.Name,
		Point:      convertPoint(f.Point),
		Products:   convertProducts(f.Products),
		ShortName:  f.UniqueShortName(),
		Identified: f.IsIdentified(),
		UpdatedAt:  f.UpdatedAt.UTC(),
	}
}

func convertPoint(p *domain.Point) *PointResponse {
	if p == nil {
		return nil
	}
	return &PointResponse{
		Lat:    p.Lat,
		Lon:    p.Lon,
		LatDeg: p.LatDegrees(),
		LonDeg: p.LonDegrees(),
	}
}

func convertProducts(s *domain.ProductSet) []string {
	if s == nil {
		return nil
	}
	return s.Names()
}

// ConvertFavorites конвертирует список
func ConvertFavorites(favorites []*domain.FavoriteLocation) []*FavoriteResponse {
	out := make([]*FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, ConvertFavorite(f))
	}
	return out
}

// WriteResponse - результат PUT
type WriteResponse struct {
	UID    int64  `json:"uid" example:"1"`
	Change string `json:"change" example:"INSERTED"`
}

// CountResponse - результат подсчёта
type CountResponse struct {
	Count int `json:"count" example:"1"`
}
