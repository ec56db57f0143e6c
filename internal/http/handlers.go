package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leafbridge/leafbridge/internal/assets"
	"github.com/leafbridge/leafbridge/internal/bridge"
	"github.com/leafbridge/leafbridge/internal/logging"
	"github.com/leafbridge/leafbridge/internal/sandbox"
	"github.com/leafbridge/leafbridge/internal/shared/id"
	"github.com/leafbridge/leafbridge/internal/types"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	bridge    *bridge.Bridge
	engine    *sandbox.Engine
	log       *logging.Logger
	preflight *preflightClient
}

// NewHandlers creates a new handler set.
func NewHandlers(b *bridge.Bridge, engine *sandbox.Engine, log *logging.Logger) *Handlers {
	return &Handlers{
		bridge:    b,
		engine:    engine,
		log:       log,
		preflight: newPreflightClient(),
	}
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "leafbridge",
		"version": "0.3.0",
	})
}

// Health handles the health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"engine_loaded": h.engine.Loaded(),
		"bridge_ready":  h.bridge.Initialized(),
	})
}

// MapState returns the host's desired map state with defaults applied.
func (h *Handlers) MapState(c *gin.Context) {
	c.JSON(http.StatusOK, h.bridge.State())
}

// EngineState returns the engine's own view of the map state. Debug
// surface: the bridge never reads this.
func (h *Handlers) EngineState(c *gin.Context) {
	state, err := h.engine.State()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(state))
}

// SetLayers replaces the tile layer collection.
func (h *Handlers) SetLayers(c *gin.Context) {
	var req struct {
		MapLayers []types.MapLayer `json:"mapLayers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.bridge.SetMapLayers(req.MapLayers)
	c.JSON(http.StatusOK, gin.H{"mapLayers": len(req.MapLayers)})
}

// SetMarkers replaces the marker collection. Markers without an id get a
// server-assigned one.
func (h *Handlers) SetMarkers(c *gin.Context) {
	var req struct {
		MapMarkers []types.MapMarker `json:"mapMarkers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for i := range req.MapMarkers {
		if req.MapMarkers[i].ID == "" {
			req.MapMarkers[i].ID = string(id.NewMarkerID())
		}
	}
	h.bridge.SetMapMarkers(req.MapMarkers)
	c.JSON(http.StatusOK, gin.H{"mapMarkers": len(req.MapMarkers)})
}

// SetShapes replaces the shape collection. Shapes without an id get a
// server-assigned one.
func (h *Handlers) SetShapes(c *gin.Context) {
	var req struct {
		MapShapes []types.MapShape `json:"mapShapes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for i := range req.MapShapes {
		if req.MapShapes[i].ID == "" {
			req.MapShapes[i].ID = string(id.NewShapeID())
		}
	}
	h.bridge.SetMapShapes(req.MapShapes)
	c.JSON(http.StatusOK, gin.H{"mapShapes": len(req.MapShapes)})
}

// SetCenter moves the desired camera center.
func (h *Handlers) SetCenter(c *gin.Context) {
	var req types.LatLng
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.bridge.SetMapCenterPosition(req)
	c.JSON(http.StatusOK, req)
}

// SetZoom changes the desired zoom level.
func (h *Handlers) SetZoom(c *gin.Context) {
	var req struct {
		Zoom float64 `json:"zoom"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.bridge.SetZoom(req.Zoom)
	c.JSON(http.StatusOK, req)
}

// SetOwnPosition updates the own-location marker. The id is forced to the
// reserved constant whatever the client sent.
func (h *Handlers) SetOwnPosition(c *gin.Context) {
	var req types.MapMarker
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.bridge.SetOwnPositionMarker(&req)
	c.JSON(http.StatusOK, gin.H{"id": types.OwnPositionMarkerID})
}

// SimulateClick pokes the engine's click hook, which emits an
// onMapClicked event back through the bridge. Debug surface.
func (h *Handlers) SimulateClick(c *gin.Context) {
	var req types.LatLng
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	script := fmt.Sprintf("clickMap(%g, %g);", req.Lat, req.Lng)
	if err := h.engine.InjectScript(script); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clicked": req})
}

// WebviewAsset serves the embedded engine document files.
func (h *Handlers) WebviewAsset(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		name = "index.html"
	}
	data, contentType, err := assets.Asset(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
