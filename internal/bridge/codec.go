package bridge

import (
	"github.com/bytedance/sonic"

	"github.com/leafbridge/leafbridge/internal/types"
)

// encodeMessage serializes the populated slices of a MapMessage. A nil
// collection means "not part of this message"; an empty collection is a
// real value ("clear everything") and must survive as [] on the wire,
// which struct omitempty tags would drop.
func encodeMessage(msg types.MapMessage) ([]byte, error) {
	fields := make(map[string]interface{}, 6)
	if msg.MapLayers != nil {
		fields[sliceLayers] = msg.MapLayers
	}
	if msg.MapMarkers != nil {
		fields[sliceMarkers] = msg.MapMarkers
	}
	if msg.MapShapes != nil {
		fields[sliceShapes] = msg.MapShapes
	}
	if msg.MapCenterPosition != nil {
		fields[sliceCenter] = msg.MapCenterPosition
	}
	if msg.OwnPositionMarker != nil {
		fields[sliceOwnPos] = msg.OwnPositionMarker
	}
	if msg.Zoom != nil {
		fields[sliceZoom] = msg.Zoom
	}
	return sonic.Marshal(fields)
}

// injectionScript wraps an encoded message in the postMessage call that
// simulates an inbound message event inside the engine document.
func injectionScript(encoded []byte) string {
	return "window.postMessage(" + string(encoded) + ", '*');"
}
