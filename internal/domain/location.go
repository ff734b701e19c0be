package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// LocationType - тип локации
type LocationType string

const (
	LocationTypeAny        LocationType = "ANY"
	LocationTypeStation    LocationType = "STATION"
	LocationTypePOI        LocationType = "POI"
	LocationTypeAddress    LocationType = "ADDRESS"
	LocationTypeCoordinate LocationType = "COORDINATE"
)

// ValidLocationTypes returns list of valid location types
func ValidLocationTypes() []LocationType {
	return []LocationType{
		LocationTypeAny,
		LocationTypeStation,
		LocationTypePOI,
		LocationTypeAddress,
		LocationTypeCoordinate,
	}
}

// IsValid проверяет, что тип входит в закрытый набор
func (t LocationType) IsValid() bool {
	for _, v := range ValidLocationTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// ParseLocationType разбирает сохранённое значение. Неизвестные имена
// превращаются в ANY, как это делала старая схема хранения.
func ParseLocationType(s string) LocationType {
	t := LocationType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return LocationTypeAny
	}
	return t
}

// Point - координата в микроградусах (градусы * 1E6)
type Point struct {
	Lat int32 `json:"lat" db:"lat"`
	Lon int32 `json:"lon" db:"lon"`
}

// PointFrom1E6 создаёт точку из уже масштабированных значений без округления
func PointFrom1E6(lat, lon int32) Point {
	return Point{Lat: lat, Lon: lon}
}

// PointFromDegrees масштабирует градусы до 1E6 с округлением от нуля.
// Границы проверяются до преобразования: за пределами int32 результат
// конвертации не определён.
func PointFromDegrees(lat, lon float64) (Point, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Point{}, &LocationError{Field: "lat", Reason: fmt.Sprintf("latitude %v out of range", lat)}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Point{}, &LocationError{Field: "lon", Reason: fmt.Sprintf("longitude %v out of range", lon)}
	}
	return Point{
		Lat: int32(math.Round(lat * 1e6)),
		Lon: int32(math.Round(lon * 1e6)),
	}, nil
}

func (p Point) LatDegrees() float64 { return float64(p.Lat) / 1e6 }
func (p Point) LonDegrees() float64 { return float64(p.Lon) / 1e6 }

// SamePlace - точки совпадают с точностью до тысячной градуса (~100 м)
func (p Point) SamePlace(o Point) bool {
	return p.Lat/1000 == o.Lat/1000 && p.Lon/1000 == o.Lon/1000
}

// InRange проверяет географические границы
func (p Point) InRange() bool {
	return p.Lat >= -90_000_000 && p.Lat <= 90_000_000 &&
		p.Lon >= -180_000_000 && p.Lon <= 180_000_000
}

func (p Point) String() string {
	return fmt.Sprintf("%.7f/%.7f", p.LatDegrees(), p.LonDegrees())
}

// Location - неизменяемое описание места. Отсутствующие поля - nil.
type Location struct {
	Type     LocationType `json:"type"`
	ID       *string      `json:"id,omitempty"`
	Point    *Point       `json:"point,omitempty"`
	Place    *string      `json:"place,omitempty"`
	Name     *string      `json:"name,omitempty"`
	Products *ProductSet  `json:"products,omitempty"`
}

// NewLocation создаёт локацию, копируя все переданные указатели
func NewLocation(t LocationType, id *string, point *Point, place, name *string, products *ProductSet) Location {
	return Location{
		Type:     t,
		ID:       cloneString(id),
		Point:    clonePoint(point),
		Place:    cloneString(place),
		Name:     cloneString(name),
		Products: cloneProducts(products),
	}
}

// NewCoordinateLocation - локация-координата (например, от GPS)
func NewCoordinateLocation(p Point) Location {
	return NewLocation(LocationTypeCoordinate, nil, &p, nil, nil, nil)
}

// Equal сравнивает все поля, включая отсутствие значений
func (l Location) Equal(o Location) bool {
	return l.Type == o.Type &&
		equalString(l.ID, o.ID) &&
		equalPoint(l.Point, o.Point) &&
		equalString(l.Place, o.Place) &&
		equalString(l.Name, o.Name) &&
		equalProducts(l.Products, o.Products)
}

// Validate проверяет инварианты локации
func (l Location) Validate() error {
	if !l.Type.IsValid() {
		return &LocationError{Field: "type", Reason: fmt.Sprintf("unknown location type %q", l.Type)}
	}
	if l.ID != nil {
		if l.Type == LocationTypeAny {
			return &LocationError{Field: "id", Reason: "type ANY cannot have an id"}
		}
		if strings.TrimSpace(*l.ID) == "" {
			return &LocationError{Field: "id", Reason: "id cannot be blank"}
		}
	}
	if l.Place != nil && l.Name == nil {
		return &LocationError{Field: "place", Reason: "place cannot be set without name"}
	}
	if l.Type == LocationTypeCoordinate {
		if l.Point == nil {
			return &LocationError{Field: "point", Reason: "coordinates missing"}
		}
		if l.Place != nil || l.Name != nil {
			return &LocationError{Field: "name", Reason: "coordinates cannot have place or name"}
		}
	}
	if l.Point != nil && !l.Point.InRange() {
		return &LocationError{Field: "point", Reason: "coordinates out of range"}
	}
	return nil
}

// LocationError - нарушение инварианта локации
type LocationError struct {
	Field  string
	Reason string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("invalid location %s: %s", e.Field, e.Reason)
}

func (l Location) HasID() bool {
	return l.ID != nil && strings.TrimSpace(*l.ID) != ""
}

func (l Location) HasCoords() bool {
	return l.Point != nil
}

// HasLocation - координаты есть и это не 0/0
func (l Location) HasLocation() bool {
	return l.Point != nil && (l.Point.Lat != 0 || l.Point.Lon != 0)
}

// IsIdentified - достаточно ли данных, чтобы провайдер однозначно нашёл это место
func (l Location) IsIdentified() bool {
	switch l.Type {
	case LocationTypeStation:
		return l.HasID()
	case LocationTypePOI:
		return true
	case LocationTypeAddress, LocationTypeCoordinate:
		return l.HasCoords()
	default:
		return false
	}
}

// nonUniqueNames - названия, которые встречаются во многих городах. Отсортированы.
var nonUniqueNames = func() []string {
	names := []string{
		"Hauptbahnhof", "Hbf", "Bahnhof", "Bf", "Busbahnhof", "ZOB",
		"Schiffstation", "Schiffst.", "Zentrum", "Markt", "Dorf", "Kirche",
		"Nord", "Ost", "Süd", "West",
	}
	sort.Strings(names)
	return names
}()

// UniqueShortName возвращает короткое имя, которое можно показать без контекста
func (l Location) UniqueShortName() string {
	if l.Place != nil && l.Name != nil {
		i := sort.SearchStrings(nonUniqueNames, *l.Name)
		if i < len(nonUniqueNames) && nonUniqueNames[i] == *l.Name {
			return *l.Place + ", " + *l.Name
		}
	}
	if l.Name != nil {
		return *l.Name
	}
	if l.HasID() {
		return *l.ID
	}
	return ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneProducts(p *ProductSet) *ProductSet {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalPoint(a, b *Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalProducts(a, b *ProductSet) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// StringPtr - удобный помощник для опциональных строк
func StringPtr(s string) *string {
	return &s
}
