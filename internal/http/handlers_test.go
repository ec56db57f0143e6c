package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafbridge/leafbridge/internal/bridge"
	"github.com/leafbridge/leafbridge/internal/logging"
	"github.com/leafbridge/leafbridge/internal/monitoring"
	"github.com/leafbridge/leafbridge/internal/sandbox"
	"github.com/leafbridge/leafbridge/internal/types"
)

func setupTest(t *testing.T) (*gin.Engine, *bridge.Bridge, *sandbox.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := sandbox.New(sandbox.DefaultConfig(), logging.NewNop())
	b := bridge.New(engine, bridge.Config{}, logging.NewNop(), monitoring.New())
	engine.SetEmitFunc(b.HandleEvent)
	require.NoError(t, engine.Load(context.Background()))
	require.True(t, b.Initialized())

	h := NewHandlers(b, engine, logging.NewNop())
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/map/state", h.MapState)
	router.GET("/map/engine-state", h.EngineState)
	router.POST("/map/layers", h.SetLayers)
	router.POST("/map/layers/preflight", h.PreflightLayers)
	router.POST("/map/markers", h.SetMarkers)
	router.POST("/map/shapes", h.SetShapes)
	router.POST("/map/center", h.SetCenter)
	router.POST("/map/zoom", h.SetZoom)
	router.POST("/map/own-position", h.SetOwnPosition)
	router.POST("/map/click", h.SimulateClick)
	router.GET("/webview/:name", h.WebviewAsset)
	return router, b, engine
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getPath(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _, _ := setupTest(t)
	w := getPath(t, router, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["engine_loaded"])
	assert.Equal(t, true, resp["bridge_ready"])
}

func TestMapStateDefaults(t *testing.T) {
	router, _, _ := setupTest(t)
	w := getPath(t, router, "/map/state")

	require.Equal(t, http.StatusOK, w.Code)
	var state types.MapMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.Zoom)
	assert.Equal(t, types.DefaultZoom, *state.Zoom)
	require.Len(t, state.MapLayers, 1)
	assert.Equal(t, "OpenStreetMap", state.MapLayers[0].BaseLayerName)
}

func TestSetMarkersAssignsIDs(t *testing.T) {
	router, b, engine := setupTest(t)

	w := postJSON(t, router, "/map/markers",
		`{"mapMarkers":[{"position":{"lat":1,"lng":2}},{"id":"keep-me","position":{"lat":3,"lng":4}}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	state := b.State()
	require.Len(t, state.MapMarkers, 2)
	assert.True(t, strings.HasPrefix(state.MapMarkers[0].ID, "mrk_"), "id %q", state.MapMarkers[0].ID)
	assert.Equal(t, "keep-me", state.MapMarkers[1].ID)

	// The update reached the engine.
	engineState, err := engine.State()
	require.NoError(t, err)
	assert.Contains(t, engineState, "keep-me")
}

func TestSetShapesAssignsIDs(t *testing.T) {
	router, b, _ := setupTest(t)

	w := postJSON(t, router, "/map/shapes",
		`{"mapShapes":[{"shape":"circle","center":{"lat":0,"lng":0},"radius":50}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	state := b.State()
	require.Len(t, state.MapShapes, 1)
	assert.True(t, strings.HasPrefix(state.MapShapes[0].ID, "shp_"), "id %q", state.MapShapes[0].ID)
}

func TestSetZoomAndCenter(t *testing.T) {
	router, b, _ := setupTest(t)

	require.Equal(t, http.StatusOK, postJSON(t, router, "/map/zoom", `{"zoom":4}`).Code)
	require.Equal(t, http.StatusOK, postJSON(t, router, "/map/center", `{"lat":1,"lng":2}`).Code)

	state := b.State()
	require.NotNil(t, state.Zoom)
	assert.Equal(t, float64(4), *state.Zoom)
	require.NotNil(t, state.MapCenterPosition)
	assert.Equal(t, types.LatLng{Lat: 1, Lng: 2}, *state.MapCenterPosition)
}

func TestSetZoomRejectsBadJSON(t *testing.T) {
	router, _, _ := setupTest(t)
	w := postJSON(t, router, "/map/zoom", `{"zoom":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetOwnPositionForcesReservedID(t *testing.T) {
	router, b, _ := setupTest(t)

	w := postJSON(t, router, "/map/own-position", `{"id":"anything","position":{"lat":1,"lng":2}}`)
	require.Equal(t, http.StatusOK, w.Code)

	state := b.State()
	require.NotNil(t, state.OwnPositionMarker)
	assert.Equal(t, types.OwnPositionMarkerID, state.OwnPositionMarker.ID)
}

func TestSimulateClickEmitsEvent(t *testing.T) {
	router, b, _ := setupTest(t)

	var got types.WebviewLeafletMessage
	b.SetOnMessage(func(msg types.WebviewLeafletMessage) { got = msg })

	w := postJSON(t, router, "/map/click", `{"lat":10,"lng":20}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, types.EventMapClicked, got.Event)
	pos, ok := got.TouchLatLng()
	require.True(t, ok)
	assert.Equal(t, types.LatLng{Lat: 10, Lng: 20}, pos)
}

func TestEngineState(t *testing.T) {
	router, _, _ := setupTest(t)
	w := getPath(t, router, "/map/engine-state")

	require.Equal(t, http.StatusOK, w.Code)
	var state map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Contains(t, state, "mapLayers")
	assert.Contains(t, state, "zoom")
}

func TestWebviewAsset(t *testing.T) {
	router, _, _ := setupTest(t)

	w := getPath(t, router, "/webview/engine.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "javascript")
	assert.Contains(t, w.Body.String(), "postMessage")

	assert.Equal(t, http.StatusNotFound, getPath(t, router, "/webview/missing.png").Code)
}

func TestPreflightLayers(t *testing.T) {
	tiles := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".png") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer tiles.Close()

	router, _, _ := setupTest(t)

	body := `{"mapLayers":[` +
		`{"baseLayerName":"good","url":"` + tiles.URL + `/{z}/{x}/{y}.png"},` +
		`{"baseLayerName":"bad","url":"` + tiles.URL + `/{z}/{x}/{y}.jpg"}]}`
	w := postJSON(t, router, "/map/layers/preflight", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []PreflightResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].OK)
	assert.Equal(t, http.StatusOK, resp.Results[0].Status)
	assert.False(t, resp.Results[1].OK)
	assert.Equal(t, http.StatusNotFound, resp.Results[1].Status)
}

func TestSampleTileURL(t *testing.T) {
	got := sampleTileURL("https://{s}.tile.example/{z}/{x}/{y}{r}.png")
	assert.Equal(t, "https://a.tile.example/1/0/0.png", got)
}
