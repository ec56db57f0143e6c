// Package http provides the REST surface for the map bridge.
//
// Endpoints:
//   - Health: / and /health
//   - State: GET /map/state (host view), GET /map/engine-state (engine view)
//   - Slices: POST /map/layers, /map/markers, /map/shapes, /map/center,
//     /map/zoom, /map/own-position
//   - Tooling: POST /map/layers/preflight, POST /map/click
//   - Assets: GET /webview and /webview/:name
//
// Collection updates follow the bridge's replace-whole-collection
// semantics; markers and shapes submitted without an id get a
// server-assigned prefixed ULID.
package http
