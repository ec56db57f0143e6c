package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafbridge/leafbridge/internal/bridge"
	"github.com/leafbridge/leafbridge/internal/logging"
	"github.com/leafbridge/leafbridge/internal/monitoring"
	"github.com/leafbridge/leafbridge/internal/sandbox"
	"github.com/leafbridge/leafbridge/internal/types"
)

// frame mirrors the relay's wire frames. Message is raw because the same
// key carries either a string (system, error) or an event object.
type frame struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message,omitempty"`
	Client  string          `json:"client,omitempty"`
}

func setupWS(t *testing.T) (*websocket.Conn, *bridge.Bridge, *sandbox.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := sandbox.New(sandbox.DefaultConfig(), logging.NewNop())
	b := bridge.New(engine, bridge.Config{}, logging.NewNop(), monitoring.New())
	engine.SetEmitFunc(b.HandleEvent)

	h := NewHandler(b, logging.NewNop(), monitoring.New())
	b.SetOnMessage(h.Broadcast)

	require.NoError(t, engine.Load(context.Background()))

	router := gin.New()
	router.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, b, engine
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWelcomeFrame(t *testing.T) {
	conn, _, _ := setupWS(t)

	f := readFrame(t, conn)
	assert.Equal(t, "system", f.Type)
	assert.NotEmpty(t, f.Client)
}

func TestCommandsReachBridge(t *testing.T) {
	conn, b, _ := setupWS(t)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "setZoom",
		"zoom": 6,
	}))
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":       "setMapMarkers",
		"mapMarkers": []types.MapMarker{{ID: "m1", Position: types.LatLng{Lat: 1, Lng: 2}}},
	}))
	// Pong doubles as a barrier: once it arrives, prior commands ran.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "ping"}))
	assert.Equal(t, "pong", readFrame(t, conn).Type)

	state := b.State()
	require.NotNil(t, state.Zoom)
	assert.Equal(t, float64(6), *state.Zoom)
	require.Len(t, state.MapMarkers, 1)
	assert.Equal(t, "m1", state.MapMarkers[0].ID)
}

func TestBulkStateCommand(t *testing.T) {
	conn, b, _ := setupWS(t)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":              "setMapState",
		"zoom":              8,
		"mapCenterPosition": types.LatLng{Lat: 5, Lng: 6},
		"mapMarkers":        []types.MapMarker{{ID: "bulk", Position: types.LatLng{Lat: 1, Lng: 2}}},
	}))
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "ping"}))
	assert.Equal(t, "pong", readFrame(t, conn).Type)

	state := b.State()
	require.NotNil(t, state.Zoom)
	assert.Equal(t, float64(8), *state.Zoom)
	require.NotNil(t, state.MapCenterPosition)
	assert.Equal(t, types.LatLng{Lat: 5, Lng: 6}, *state.MapCenterPosition)
	require.Len(t, state.MapMarkers, 1)
	assert.Equal(t, "bulk", state.MapMarkers[0].ID)
}

func TestBulkStateCommandRejectsEmpty(t *testing.T) {
	conn, _, _ := setupWS(t)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "setMapState"}))

	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
}

func TestEngineEventsBroadcast(t *testing.T) {
	conn, _, engine := setupWS(t)
	readFrame(t, conn) // welcome

	require.NoError(t, engine.InjectScript("clickMap(10, 20);"))

	f := readFrame(t, conn)
	assert.Equal(t, "mapEvent", f.Type)
	var msg types.WebviewLeafletMessage
	require.NoError(t, json.Unmarshal(f.Message, &msg))
	assert.Equal(t, types.EventMapClicked, msg.Event)
	pos, ok := msg.TouchLatLng()
	require.True(t, ok)
	assert.Equal(t, types.LatLng{Lat: 10, Lng: 20}, pos)
}

func TestUnknownCommand(t *testing.T) {
	conn, _, _ := setupWS(t)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "launchMissiles"}))

	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
}

func TestCenterCommandRequiresPayload(t *testing.T) {
	conn, _, _ := setupWS(t)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "setMapCenterPosition"}))

	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
}
