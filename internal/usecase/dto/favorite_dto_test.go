package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transit-favorites/internal/domain"
	apperrors "github.com/transit-favorites/internal/pkg/errors"
)

func TestSetFavoriteRequest_ToDomain(t *testing.T) {
	var req SetFavoriteRequest
	body := `{"type":"STATION","id":"8011160","point":{"lat":52525589,"lon":13369548},
		"place":"Berlin","name":"Hauptbahnhof","products":["HIGH_SPEED_TRAIN","subway"]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	fav, err := req.ToDomain(domain.FavoriteKindHome, domain.NetworkDB)
	require.NoError(t, err)

	assert.Equal(t, domain.FavoriteKindHome, fav.Kind)
	assert.Equal(t, domain.NetworkDB, fav.NetworkID)
	assert.Equal(t, domain.LocationTypeStation, fav.Type)
	assert.Equal(t, domain.PointFrom1E6(52525589, 13369548), *fav.Point)
	assert.Equal(t, domain.NewProductSet(domain.ProductHighSpeedTrain, domain.ProductSubway), *fav.Products)
}

func TestSetFavoriteRequest_PointInDegrees(t *testing.T) {
	var req SetFavoriteRequest
	body := `{"type":"ADDRESS","point":{"lat_deg":52.525589,"lon_deg":-13.369548},"name":"Invalidenstr. 1"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	fav, err := req.ToDomain(domain.FavoriteKindWork, domain.NetworkVBB)
	require.NoError(t, err)
	assert.Equal(t, domain.PointFrom1E6(52525589, -13369548), *fav.Point)
}

func TestPointRequest_DegreesOutOfRange(t *testing.T) {
	lat, lon := 4e9, 13.4
	_, err := PointRequest{LatDeg: &lat, LonDeg: &lon}.ToPoint()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "point.lat", appErr.Details["field"])

	// только одна координата в градусах
	_, err = PointRequest{LatDeg: &lon}.ToPoint()
	assert.True(t, apperrors.IsValidation(err))
}

func TestSetFavoriteRequest_ProductsAbsentVsEmpty(t *testing.T) {
	var absent, empty SetFavoriteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"type":"POI","id":"p"}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"type":"POI","id":"p","products":[]}`), &empty))

	favAbsent, err := absent.ToDomain(domain.FavoriteKindWork, domain.NetworkVBB)
	require.NoError(t, err)
	assert.Nil(t, favAbsent.Products)

	favEmpty, err := empty.ToDomain(domain.FavoriteKindWork, domain.NetworkVBB)
	require.NoError(t, err)
	require.NotNil(t, favEmpty.Products)
	assert.Equal(t, 0, favEmpty.Products.Len())
}

func TestSetFavoriteRequest_UnknownProduct(t *testing.T) {
	req := SetFavoriteRequest{LocationRequest{Type: "STATION", Products: []string{"ZEPPELIN"}}}
	_, err := req.ToDomain(domain.FavoriteKindWork, domain.NetworkDB)
	assert.True(t, apperrors.IsValidation(err))
}

func TestConvertFavorite(t *testing.T) {
	assert.Nil(t, ConvertFavorite(nil))

	p := domain.PointFrom1E6(52525589, 13369548)
	fav := domain.NewFavoriteLocation(domain.FavoriteKindWork, domain.NetworkDB, domain.NewLocation(
		domain.LocationTypeStation, domain.StringPtr("8011160"), &p,
		domain.StringPtr("Berlin"), domain.StringPtr("Hauptbahnhof"), nil))
	fav.UID = 5

	resp := ConvertFavorite(&fav)
	require.NotNil(t, resp)
	assert.Equal(t, int64(5), resp.UID)
	assert.Equal(t, "Berlin, Hauptbahnhof", resp.ShortName)
	assert.True(t, resp.Identified)
	assert.InDelta(t, 52.525589, resp.Point.LatDeg, 1e-9)
	assert.Nil(t, resp.Products)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"products":null`)
}
