// Package ws provides the WebSocket relay between host applications and
// the map bridge.
//
// Connected clients drive the bridge's state setters through typed command
// frames, and receive every decoded engine event as it happens.
//
// Message Types (Client → Server):
//   - setMapState: Apply several slices in one frame
//   - setMapLayers: Replace the tile layer collection
//   - setMapMarkers: Replace the marker collection
//   - setMapShapes: Replace the shape collection
//   - setMapCenterPosition: Move the camera center
//   - setZoom: Change the zoom level
//   - setOwnPositionMarker: Update the own-location marker
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection banner with assigned client id
//   - mapEvent: Decoded engine event (click, move, zoom, ...)
//   - pong: Keep-alive reply
//   - error: Command rejected
//
// Example Usage:
//
//	handler := ws.NewHandler(bridge, logger, metrics)
//	bridge.SetOnMessage(handler.Broadcast)
//	router.GET("/stream", handler.HandleConnection)
package ws
