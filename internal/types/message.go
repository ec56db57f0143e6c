package types

// EventKind tags an inbound engine event.
type EventKind string

// These constants must stay in sync with the event names emitted by the
// engine document's script.
const (
	EventMapComponentMounted EventKind = "onMapComponentMounted"
	EventMapClicked          EventKind = "onMapClicked"
	EventMapMarkerClicked    EventKind = "onMapMarkerClicked"
	EventMove                EventKind = "onMove"
	EventMoveStart           EventKind = "onMoveStart"
	EventMoveEnd             EventKind = "onMoveEnd"
	EventZoom                EventKind = "onZoom"
	EventZoomStart           EventKind = "onZoomStart"
	EventZoomEnd             EventKind = "onZoomEnd"
	EventZoomLevelsChange    EventKind = "onZoomLevelsChange"
	EventResize              EventKind = "onResize"
	EventViewReset           EventKind = "onViewReset"
	EventUnload              EventKind = "onUnload"
)

// MapMessage is the outbound envelope pushed into the engine. It is a
// partial bag: an update populates only the slice that changed, while the
// startup message bundles every slice currently set.
type MapMessage struct {
	MapLayers         []MapLayer  `json:"mapLayers,omitempty"`
	MapMarkers        []MapMarker `json:"mapMarkers,omitempty"`
	MapShapes         []MapShape  `json:"mapShapes,omitempty"`
	MapCenterPosition *LatLng     `json:"mapCenterPosition,omitempty"`
	OwnPositionMarker *MapMarker  `json:"ownPositionMarker,omitempty"`
	Zoom              *float64    `json:"zoom,omitempty"`
}

// IsEmpty reports whether no slice is populated.
func (m MapMessage) IsEmpty() bool {
	return m.MapLayers == nil &&
		m.MapMarkers == nil &&
		m.MapShapes == nil &&
		m.MapCenterPosition == nil &&
		m.OwnPositionMarker == nil &&
		m.Zoom == nil
}

// WebviewLeafletMessage is the inbound envelope emitted by the engine.
// The payload shape depends on the event kind; the bridge forwards it
// without validating its internals.
type WebviewLeafletMessage struct {
	Event   EventKind              `json:"event"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// TouchLatLng extracts the touched coordinate from a click payload.
// Returns false when the payload does not carry one.
func (m WebviewLeafletMessage) TouchLatLng() (LatLng, bool) {
	raw, ok := m.Payload["touchLatLng"].(map[string]interface{})
	if !ok {
		return LatLng{}, false
	}
	lat, latOK := raw["lat"].(float64)
	lng, lngOK := raw["lng"].(float64)
	if !latOK || !lngOK {
		return LatLng{}, false
	}
	return LatLng{Lat: lat, Lng: lng}, true
}
