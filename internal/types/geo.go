package types

// LatLng is a geographic coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ShapeKind enumerates the vector shapes the engine can draw.
type ShapeKind string

const (
	ShapePolygon  ShapeKind = "polygon"
	ShapePolyline ShapeKind = "polyline"
	ShapeCircle   ShapeKind = "circle"
)

// DefaultZoom is applied when the host never supplies a zoom level.
const DefaultZoom float64 = 15

// OwnPositionMarkerID is the reserved marker id for the user's own location.
// The bridge forces this id onto the own-position marker regardless of what
// the host supplies, so the engine can special-case it and it can never
// collide with a user marker.
const OwnPositionMarkerID = "ownPositionMarker"

// MapLayer describes a tile layer. The URL is a tile template
// (e.g. "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"); exactly the
// layers marked checked are active base layers on the engine side.
type MapLayer struct {
	URL                string `json:"url"`
	Attribution        string `json:"attribution"`
	BaseLayerName      string `json:"baseLayerName"`
	BaseLayerIsChecked bool   `json:"baseLayerIsChecked"`
}

// DefaultLayers returns the layer set used when the host supplies none:
// a single OpenStreetMap base layer with standard attribution.
func DefaultLayers() []MapLayer {
	return []MapLayer{
		{
			URL:                "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution:        `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
			BaseLayerName:      "OpenStreetMap",
			BaseLayerIsChecked: true,
		},
	}
}

// MarkerAnimation describes an optional CSS animation applied to a marker
// by the engine.
type MarkerAnimation struct {
	Type      string `json:"type,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	Delay     int    `json:"delay,omitempty"`
	Direction string `json:"direction,omitempty"`
	Iteration int    `json:"iterationCount,omitempty"`
}

// MapMarker is a point of interest. Markers are identified by id and always
// sent as a whole collection: the engine replaces its marker set with each
// snapshot, so removal is omission from the next snapshot.
type MapMarker struct {
	ID        string           `json:"id"`
	Position  LatLng           `json:"position"`
	Icon      string           `json:"icon,omitempty"`
	Size      []int            `json:"size,omitempty"`
	Animation *MarkerAnimation `json:"animation,omitempty"`
	Title     string           `json:"title,omitempty"`
}

// MapShape is a vector overlay. Same replace-whole-collection lifecycle
// as markers.
type MapShape struct {
	ID        string    `json:"id"`
	Shape     ShapeKind `json:"shape"`
	Positions []LatLng  `json:"positions,omitempty"`
	Center    *LatLng   `json:"center,omitempty"`
	Radius    float64   `json:"radius,omitempty"`
	Color     string    `json:"color,omitempty"`
}
