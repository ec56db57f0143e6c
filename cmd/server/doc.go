// Command server runs the leafbridge service: the sandboxed map engine,
// the state bridge, and the HTTP/WebSocket host surface.
package main
