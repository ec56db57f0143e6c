/*
Package bridge synchronizes host-side map state with the rendering engine
hosted in the sandboxed runtime, and relays engine events back to the host.

# Overview

The bridge owns the host's desired map state as six independent slices:
layers, markers, shapes, center, zoom, and the own-position marker. Each
slice has its own setter; a setter dispatches an outbound message containing
only that slice when the value actually changed and the engine has finished
initializing. Outbound messages are JSON MapMessage envelopes injected into
the engine's execution context as postMessage-style scripts, fire-and-forget.

# Lifecycle

The bridge starts Uninitialized. Slice updates made in that state are
recorded but suppressed, never queued. When the engine emits its
onMapComponentMounted event the bridge transitions to Initialized, a
one-way transition that is never reset, and dispatches exactly one combined
startup message carrying the snapshot of every slice currently set, with
the default OpenStreetMap layer and default zoom filled in where the host
supplied nothing.

# Inbound events

HandleEvent decodes raw JSON emitted by the engine and forwards the decoded
message to the registered host callback. Empty payloads are ignored;
unparseable payloads are counted, logged at debug, and dropped; they never
propagate a failure into the host.

# Equality policy

Slice change detection is deep: values are compared by their serialized
form, so re-setting an equal value through a new slice or pointer does not
re-dispatch. This is the documented policy for the update path.
*/
package bridge
