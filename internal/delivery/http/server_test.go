package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transit-favorites/internal/config"
	deliveryhttp "github.com/transit-favorites/internal/delivery/http"
	"github.com/transit-favorites/internal/delivery/http/handler"
	"github.com/transit-favorites/internal/pkg/hub"
	"github.com/transit-favorites/internal/repository/sqlstore"
	"github.com/transit-favorites/internal/repository/sqlstore/testhelpers"
	"github.com/transit-favorites/internal/usecase"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	app, _ := newTestAppWithHub(t)
	return app
}

func newTestAppWithHub(t *testing.T) (*fiber.App, *hub.Hub) {
	logger := zap.NewNop()
	watchers := hub.NewHub(logger)
	testDB := testhelpers.SetupSQLite(t)

	repo := sqlstore.NewFavoriteRepository(testDB.DB, logger)
	favoriteUC := usecase.NewFavoriteUseCase(repo, nil, nil, watchers, logger, time.Minute)
	savedUC := usecase.NewSavedLocationUseCase(sqlstore.NewSavedLocationRepository(testDB.DB, logger), logger)

	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 0}}
	server := deliveryhttp.NewServer(
		cfg,
		logger,
		handler.NewFavoriteHandler(favoriteUC, logger),
		handler.NewSavedLocationHandler(savedUC, logger),
		handler.NewHealthHandler(map[string]handler.HealthChecker{"database": testDB.DB}, logger),
	)
	return server.App(), watchers
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

const stationBody = `{
	"type": "STATION",
	"id": "stationId",
	"point": {"lat": 23, "lon": 42},
	"place": "place",
	"name": "name",
	"products": ["HIGH_SPEED_TRAIN","REGIONAL_TRAIN","SUBURBAN_TRAIN","SUBWAY","TRAM","BUS","FERRY","CABLECAR","ON_DEMAND"]
}`

const addressBody = `{
	"type": "ADDRESS",
	"point": {"lat": 1337, "lon": 0},
	"place": "place2",
	"name": "name2"
}`

func TestFavoriteRoutes_Lifecycle(t *testing.T) {
	app := newTestApp(t)

	// пустой слот
	status, env := do(t, app, fiber.MethodGet, "/api/v1/favorites/work/db", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "null", string(env.Data))

	// вставка
	status, env = do(t, app, fiber.MethodPut, "/api/v1/favorites/WORK/DB", stationBody)
	require.Equal(t, fiber.StatusOK, status)
	var write struct {
		UID    int64  `json:"uid"`
		Change string `json:"change"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &write))
	assert.Greater(t, write.UID, int64(0))
	assert.Equal(t, "INSERTED", write.Change)

	// замена
	status, env = do(t, app, fiber.MethodPut, "/api/v1/favorites/WORK/DB", addressBody)
	require.Equal(t, fiber.StatusOK, status)
	var replaced struct {
		UID    int64  `json:"uid"`
		Change string `json:"change"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &replaced))
	assert.Equal(t, write.UID, replaced.UID)
	assert.Equal(t, "REPLACED", replaced.Change)

	status, env = do(t, app, fiber.MethodGet, "/api/v1/favorites/WORK/DB", "")
	require.Equal(t, fiber.StatusOK, status)
	var fav struct {
		Type     string   `json:"type"`
		ID       *string  `json:"id"`
		Name     string   `json:"name"`
		Products []string `json:"products"`
		Point    struct {
			Lat int32 `json:"lat"`
			Lon int32 `json:"lon"`
		} `json:"point"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fav))
	assert.Equal(t, "ADDRESS", fav.Type)
	assert.Nil(t, fav.ID)
	assert.Nil(t, fav.Products)
	assert.Equal(t, "name2", fav.Name)
	assert.Equal(t, int32(1337), fav.Point.Lat)

	status, env = do(t, app, fiber.MethodGet, "/api/v1/favorites/WORK/DB/count", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	// список сети
	status, env = do(t, app, fiber.MethodGet, "/api/v1/networks/db/favorites", "")
	require.Equal(t, fiber.StatusOK, status)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	// удаление идемпотентно
	status, _ = do(t, app, fiber.MethodDelete, "/api/v1/favorites/WORK/DB", "")
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = do(t, app, fiber.MethodDelete, "/api/v1/favorites/WORK/DB", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, env = do(t, app, fiber.MethodGet, "/api/v1/favorites/WORK/DB/count", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))
}

func TestFavoriteRoutes_ValidationErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   string
	}{
		{"unknown kind", fiber.MethodGet, "/api/v1/favorites/gym/DB", "", "VALIDATION_ERROR"},
		{"unknown network", fiber.MethodGet, "/api/v1/favorites/WORK/ATLANTIS", "", "VALIDATION_ERROR"},
		{"malformed body", fiber.MethodPut, "/api/v1/favorites/WORK/DB", `{"type":`, "INVALID_REQUEST"},
		{"unknown location type", fiber.MethodPut, "/api/v1/favorites/WORK/DB", `{"type":"BOAT"}`, "VALIDATION_ERROR"},
		{"any with id", fiber.MethodPut, "/api/v1/favorites/WORK/DB", `{"type":"ANY","id":"x"}`, "VALIDATION_ERROR"},
		{"coordinate without point", fiber.MethodPut, "/api/v1/favorites/HOME/DB", `{"type":"COORDINATE"}`, "VALIDATION_ERROR"},
		{"latitude out of range", fiber.MethodPut, "/api/v1/favorites/HOME/DB", `{"type":"COORDINATE","point":{"lat":95000000,"lon":0}}`, "VALIDATION_ERROR"},
		{"unknown product", fiber.MethodPut, "/api/v1/favorites/HOME/DB", `{"type":"POI","products":["ZEPPELIN"]}`, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}

	// после всех ошибок слоты пусты
	status, env := do(t, app, fiber.MethodGet, "/api/v1/favorites/HOME/DB/count", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))
}

func TestHealthRoute(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/health", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestWatchRoute_StreamsCurrentValue(t *testing.T) {
	app, watchers := newTestAppWithHub(t)

	status, _ := do(t, app, fiber.MethodPut, "/api/v1/favorites/HOME/BVG", addressBody)
	require.Equal(t, fiber.StatusOK, status)

	// поток не завершается сам: закрываем подписки, когда первое событие уже ушло
	go func() {
		time.Sleep(300 * time.Millisecond)
		watchers.CloseAll()
	}()

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/favorites/HOME/BVG/watch", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := string(raw)
	assert.True(t, strings.HasPrefix(body, "id: 1\nevent: favorite\ndata: {"), body)
	assert.Contains(t, body, `"name":"name2"`)
}

func TestWatchRoute_UnknownNetwork(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, fiber.MethodGet, "/api/v1/favorites/HOME/ATLANTIS/watch", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestSavedRoutes_CountAndList(t *testing.T) {
	app := newTestApp(t)

	record := func(role, location string) (bool, int64) {
		t.Helper()
		status, env := do(t, app, fiber.MethodPost, "/api/v1/networks/DB/saved",
			`{"role":"`+role+`","location":`+location+`}`)
		require.Equal(t, fiber.StatusOK, status)
		var res struct {
			Created bool `json:"created"`
			Saved   struct {
				UID int64 `json:"uid"`
			} `json:"saved"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &res))
		return res.Created, res.Saved.UID
	}

	created, stationUID := record("from", stationBody)
	assert.True(t, created)
	created, again := record("FROM", stationBody)
	assert.False(t, created)
	assert.Equal(t, stationUID, again)
	_, addressUID := record("TO", addressBody)

	status, env := do(t, app, fiber.MethodGet, "/api/v1/networks/DB/saved?role=to", "")
	require.Equal(t, fiber.StatusOK, status)
	var list []struct {
		UID        int64 `json:"uid"`
		FromCount  int   `json:"from_count"`
		ToCount    int   `json:"to_count"`
		TotalCount int   `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, addressUID, list[0].UID)
	assert.Equal(t, 1, list[0].ToCount)

	status, env = do(t, app, fiber.MethodGet, "/api/v1/networks/DB/saved", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, stationUID, list[0].UID)
	assert.Equal(t, 2, list[0].TotalCount)

	status, env = do(t, app, fiber.MethodPost, "/api/v1/networks/DB/saved/lookup", stationBody)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"from_count":2`)

	// другая сеть не видит места DB
	status, env = do(t, app, fiber.MethodGet, "/api/v1/networks/BVG/saved", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "[]", string(env.Data))

	status, _ = do(t, app, fiber.MethodDelete, "/api/v1/networks/DB/saved/"+strconv.FormatInt(stationUID, 10), "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, env = do(t, app, fiber.MethodDelete, "/api/v1/networks/DB/saved/"+strconv.FormatInt(stationUID, 10), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, env = do(t, app, fiber.MethodPost, "/api/v1/networks/DB/saved/lookup", stationBody)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
}

func TestSavedRoutes_ValidationErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"unknown network", fiber.MethodGet, "/api/v1/networks/ATLANTIS/saved", ""},
		{"unknown role in query", fiber.MethodGet, "/api/v1/networks/DB/saved?role=BACK", ""},
		{"missing role", fiber.MethodPost, "/api/v1/networks/DB/saved", `{"location":` + stationBody + `}`},
		{"coordinate", fiber.MethodPost, "/api/v1/networks/DB/saved", `{"role":"TO","location":{"type":"COORDINATE","point":{"lat":1,"lon":2}}}`},
		{"uid not a number", fiber.MethodDelete, "/api/v1/networks/DB/saved/abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		})
	}
}
