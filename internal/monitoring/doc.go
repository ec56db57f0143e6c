// Package monitoring exposes Prometheus metrics for both directions of the
// bridge: outbound dispatch (sent, suppressed, failed injections) and
// inbound decoding (decoded, malformed, empty), plus websocket relay
// counters. Each server instance gets its own registry.
package monitoring
