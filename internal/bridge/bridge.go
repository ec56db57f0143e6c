package bridge

import (
	"bytes"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/leafbridge/leafbridge/internal/logging"
	"github.com/leafbridge/leafbridge/internal/monitoring"
	"github.com/leafbridge/leafbridge/internal/types"
	"github.com/leafbridge/leafbridge/internal/utils"
)

// Slice labels used for dispatch accounting.
const (
	sliceLayers  = "mapLayers"
	sliceMarkers = "mapMarkers"
	sliceShapes  = "mapShapes"
	sliceCenter  = "mapCenterPosition"
	sliceZoom    = "zoom"
	sliceOwnPos  = "ownPositionMarker"
	sliceStartup = "startup"
)

// Injector pushes a script into the engine's execution context. Injection
// into an engine that is not loaded must be a silent no-op.
type Injector interface {
	InjectScript(script string) error
}

// MessageHandler receives decoded engine events.
type MessageHandler func(types.WebviewLeafletMessage)

// Config defines bridge behavior.
type Config struct {
	Debug       bool    // log decoded click coordinates
	DefaultZoom float64 // zoom used when the host never sets one; 0 means types.DefaultZoom
}

// Bridge owns the host's desired map state and the message channel to the
// engine. Setters and HandleEvent are safe for concurrent use.
type Bridge struct {
	injector Injector
	log      *logging.Logger
	metrics  *monitoring.Metrics
	cfg      Config

	mu          sync.Mutex
	initialized bool

	// dispatchMu orders injections: it is acquired while mu is still held,
	// so messages reach the engine in state-change order and a racing
	// setter can never land ahead of the startup snapshot. Held across the
	// injection itself; the engine document never emits in response to an
	// inbound message, so an injection cannot re-enter a setter under it.
	dispatchMu sync.Mutex

	layers  []types.MapLayer
	markers []types.MapMarker
	shapes  []types.MapShape
	center  *types.LatLng
	zoom    *float64
	ownPos  *types.MapMarker

	// Serialized form of the last accepted value per slice, for deep
	// change detection.
	lastSeen map[string][]byte

	onMessage MessageHandler
}

// New creates a bridge in the Uninitialized state.
func New(injector Injector, cfg Config, log *logging.Logger, metrics *monitoring.Metrics) *Bridge {
	if log == nil {
		log = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.New()
	}
	if cfg.DefaultZoom == 0 {
		cfg.DefaultZoom = types.DefaultZoom
	}
	return &Bridge{
		injector: injector,
		log:      log,
		metrics:  metrics,
		cfg:      cfg,
		lastSeen: make(map[string][]byte),
	}
}

// SetOnMessage registers the host callback for decoded engine events.
// A nil handler discards events.
func (b *Bridge) SetOnMessage(h MessageHandler) {
	b.mu.Lock()
	b.onMessage = h
	b.mu.Unlock()
}

// Initialized reports whether the startup handshake has completed.
func (b *Bridge) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// SetMapLayers replaces the tile layer collection. A nil argument is an
// explicit empty collection, not "unset".
func (b *Bridge) SetMapLayers(layers []types.MapLayer) {
	if layers == nil {
		layers = []types.MapLayer{}
	}
	b.mu.Lock()
	if !b.changedLocked(sliceLayers, layers) {
		b.mu.Unlock()
		return
	}
	b.layers = layers
	msg, ok := b.gateLocked(sliceLayers, types.MapMessage{MapLayers: layers})
	b.dispatchLocked(msg, sliceLayers, ok)
}

// SetMapMarkers replaces the whole marker collection. Markers absent from
// the snapshot are removed on the engine side.
func (b *Bridge) SetMapMarkers(markers []types.MapMarker) {
	if markers == nil {
		markers = []types.MapMarker{}
	}
	markers = sanitizeMarkers(markers)
	b.mu.Lock()
	if !b.changedLocked(sliceMarkers, markers) {
		b.mu.Unlock()
		return
	}
	b.markers = markers
	msg, ok := b.gateLocked(sliceMarkers, types.MapMessage{MapMarkers: markers})
	b.dispatchLocked(msg, sliceMarkers, ok)
}

// SetMapShapes replaces the whole shape collection.
func (b *Bridge) SetMapShapes(shapes []types.MapShape) {
	if shapes == nil {
		shapes = []types.MapShape{}
	}
	b.mu.Lock()
	if !b.changedLocked(sliceShapes, shapes) {
		b.mu.Unlock()
		return
	}
	b.shapes = shapes
	msg, ok := b.gateLocked(sliceShapes, types.MapMessage{MapShapes: shapes})
	b.dispatchLocked(msg, sliceShapes, ok)
}

// SetMapCenterPosition moves the desired camera center.
func (b *Bridge) SetMapCenterPosition(center types.LatLng) {
	b.mu.Lock()
	if !b.changedLocked(sliceCenter, center) {
		b.mu.Unlock()
		return
	}
	c := center
	b.center = &c
	msg, ok := b.gateLocked(sliceCenter, types.MapMessage{MapCenterPosition: &c})
	b.dispatchLocked(msg, sliceCenter, ok)
}

// SetZoom changes the desired zoom level.
func (b *Bridge) SetZoom(zoom float64) {
	b.mu.Lock()
	if !b.changedLocked(sliceZoom, zoom) {
		b.mu.Unlock()
		return
	}
	z := zoom
	b.zoom = &z
	msg, ok := b.gateLocked(sliceZoom, types.MapMessage{Zoom: &z})
	b.dispatchLocked(msg, sliceZoom, ok)
}

// SetOwnPositionMarker updates the user's own-location marker. The marker
// id is forced to the reserved constant regardless of what the host set,
// so it can never collide with a user marker.
func (b *Bridge) SetOwnPositionMarker(marker *types.MapMarker) {
	if marker != nil {
		m := *marker
		m.ID = types.OwnPositionMarkerID
		m.Title = utils.SanitizeHTML(m.Title)
		marker = &m
	}
	b.mu.Lock()
	if !b.changedLocked(sliceOwnPos, marker) {
		b.mu.Unlock()
		return
	}
	b.ownPos = marker
	if marker == nil {
		// Clearing the marker leaves nothing to send; the next snapshot
		// simply omits it.
		b.mu.Unlock()
		return
	}
	msg, ok := b.gateLocked(sliceOwnPos, types.MapMessage{OwnPositionMarker: marker})
	b.dispatchLocked(msg, sliceOwnPos, ok)
}

// State returns the current desired state as a combined message, with
// defaults filled in the way the startup message fills them.
func (b *Bridge) State() types.MapMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// changedLocked marshals the candidate value and compares it to the last
// accepted value for the slice. Equal serialized forms mean no change.
func (b *Bridge) changedLocked(slice string, v interface{}) bool {
	data, err := sonic.Marshal(v)
	if err != nil {
		b.log.Warn("failed to serialize slice value", zap.String("slice", slice), zap.Error(err))
		return false
	}
	if prev, ok := b.lastSeen[slice]; ok && bytes.Equal(prev, data) {
		return false
	}
	b.lastSeen[slice] = data
	return true
}

// gateLocked applies the initialization gate: before the engine has
// signaled readiness every per-slice dispatch is suppressed, not queued.
func (b *Bridge) gateLocked(slice string, msg types.MapMessage) (types.MapMessage, bool) {
	if !b.initialized {
		b.metrics.MessagesSuppressed.WithLabelValues(slice).Inc()
		b.log.Debug("suppressing update before engine ready", zap.String("slice", slice))
		return types.MapMessage{}, false
	}
	return msg, true
}

// snapshotLocked bundles every currently-set slice, filling in the default
// layer set and zoom where the host supplied nothing.
func (b *Bridge) snapshotLocked() types.MapMessage {
	msg := types.MapMessage{
		MapLayers:         b.layers,
		MapMarkers:        b.markers,
		MapShapes:         b.shapes,
		MapCenterPosition: b.center,
		OwnPositionMarker: b.ownPos,
		Zoom:              b.zoom,
	}
	if msg.MapLayers == nil {
		msg.MapLayers = types.DefaultLayers()
	}
	if msg.Zoom == nil {
		z := b.cfg.DefaultZoom
		msg.Zoom = &z
	}
	return msg
}

// dispatchLocked hands off from the state lock to the dispatch-ordering
// lock and injects the message. Called with mu held; releases it.
func (b *Bridge) dispatchLocked(msg types.MapMessage, slice string, ok bool) {
	if !ok {
		b.mu.Unlock()
		return
	}
	b.dispatchMu.Lock()
	b.mu.Unlock()
	b.dispatch(msg, slice)
	b.dispatchMu.Unlock()
}

// dispatch serializes the message and injects it into the engine as a
// postMessage call. Fire-and-forget: injector errors are counted and
// logged, never surfaced to the host path.
func (b *Bridge) dispatch(msg types.MapMessage, slice string) {
	data, err := encodeMessage(msg)
	if err != nil {
		b.log.Warn("failed to serialize outbound message", zap.String("slice", slice), zap.Error(err))
		return
	}
	if err := utils.ValidatePayloadSize(data); err != nil {
		b.log.Warn("dropping outbound message", zap.String("slice", slice), zap.Error(err))
		return
	}
	if err := b.injector.InjectScript(injectionScript(data)); err != nil {
		b.metrics.InjectionFailures.Inc()
		b.log.Debug("engine rejected injection", zap.String("slice", slice), zap.Error(err))
		return
	}
	b.metrics.MessagesSent.WithLabelValues(slice).Inc()
}

func sanitizeMarkers(markers []types.MapMarker) []types.MapMarker {
	out := make([]types.MapMarker, len(markers))
	copy(out, markers)
	for i := range out {
		if out[i].Title != "" {
			out[i].Title = utils.SanitizeHTML(out[i].Title)
		}
	}
	return out
}
