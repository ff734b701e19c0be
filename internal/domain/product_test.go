package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSet_Codes(t *testing.T) {
	assert.Equal(t, "IRSUTBFCP", AllProducts.Codes())
	assert.Equal(t, "", NewProductSet().Codes())
	assert.Equal(t, "SUB", NewProductSet(ProductBus, ProductSubway, ProductSuburbanTrain).Codes())
}

func TestParseProductCodes(t *testing.T) {
	set, err := ParseProductCodes("TB")
	require.NoError(t, err)
	assert.True(t, set.Contains(ProductTram))
	assert.True(t, set.Contains(ProductBus))
	assert.False(t, set.Contains(ProductFerry))
	assert.Equal(t, 2, set.Len())

	empty, err := ParseProductCodes("")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = ParseProductCodes("TX")
	assert.Error(t, err)
}

func TestProductSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewProductSet(ProductTram, ProductHighSpeedTrain))
	require.NoError(t, err)
	assert.JSONEq(t, `["HIGH_SPEED_TRAIN","TRAM"]`, string(data))

	var set ProductSet
	require.NoError(t, json.Unmarshal([]byte(`["bus","FERRY"]`), &set))
	assert.Equal(t, NewProductSet(ProductBus, ProductFerry), set)

	assert.Error(t, json.Unmarshal([]byte(`["ZEPPELIN"]`), &set))
}

func TestLocation_JSONKeepsAbsence(t *testing.T) {
	var withEmpty Location
	require.NoError(t, json.Unmarshal([]byte(`{"type":"POI","id":"p","products":[]}`), &withEmpty))
	require.NotNil(t, withEmpty.Products)
	assert.Equal(t, 0, withEmpty.Products.Len())
	assert.Nil(t, withEmpty.Point)

	var withoutProducts Location
	require.NoError(t, json.Unmarshal([]byte(`{"type":"POI","id":"p"}`), &withoutProducts))
	assert.Nil(t, withoutProducts.Products)
}
