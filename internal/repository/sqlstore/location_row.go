package sqlstore

import (
	"database/sql"

	"github.com/transit-favorites/internal/domain"
)

// locationRow - колонки значения места, общие для favorite_locations и saved_locations
type locationRow struct {
	Type     string         `db:"type"`
	ID       sql.NullString `db:"id"`
	Lat      sql.NullInt32  `db:"lat"`
	Lon      sql.NullInt32  `db:"lon"`
	Place    sql.NullString `db:"place"`
	Name     sql.NullString `db:"name"`
	Products sql.NullString `db:"products"`
}

func locationRowFrom(l domain.Location) locationRow {
	row := locationRow{
		Type:  string(l.Type),
		ID:    nullString(l.ID),
		Place: nullString(l.Place),
		Name:  nullString(l.Name),
	}
	if l.Point != nil {
		row.Lat = sql.NullInt32{Int32: l.Point.Lat, Valid: true}
		row.Lon = sql.NullInt32{Int32: l.Point.Lon, Valid: true}
	}
	if l.Products != nil {
		row.Products = sql.NullString{String: l.Products.Codes(), Valid: true}
	}
	return row
}

func (row locationRow) toLocation() (domain.Location, error) {
	var point *domain.Point
	if row.Lat.Valid && row.Lon.Valid {
		p := domain.PointFrom1E6(row.Lat.Int32, row.Lon.Int32)
		point = &p
	}

	var products *domain.ProductSet
	if row.Products.Valid {
		set, err := domain.ParseProductCodes(row.Products.String)
		if err != nil {
			return domain.Location{}, err
		}
		products = &set
	}

	return domain.NewLocation(
		domain.ParseLocationType(row.Type),
		stringPtr(row.ID),
		point,
		stringPtr(row.Place),
		stringPtr(row.Name),
		products,
	), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
