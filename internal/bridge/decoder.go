package bridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/leafbridge/leafbridge/internal/types"
)

// ErrMalformedEvent marks inbound payloads that are present but not
// parseable as a structured message.
var ErrMalformedEvent = errors.New("malformed engine event")

// HandleEvent decodes raw JSON emitted by the engine and forwards the
// decoded message to the registered host callback. Empty input is ignored.
// Unparseable input is dropped with a debug log; it never panics and never
// propagates a failure to the caller.
func (b *Bridge) HandleEvent(raw string) {
	if strings.TrimSpace(raw) == "" {
		b.metrics.EventsEmpty.Inc()
		return
	}

	msg, err := decodeEvent(raw)
	if err != nil {
		b.metrics.EventsMalformed.Inc()
		b.log.Debug("dropping unparseable engine event", zap.Error(err))
		return
	}
	b.metrics.EventsDecoded.WithLabelValues(string(msg.Event)).Inc()

	// The engine's mount event is the readiness handshake: the gate opens
	// here and nowhere else. A repeat mount is still forwarded below but
	// cannot reopen the gate.
	if msg.Event == types.EventMapComponentMounted {
		b.initialize()
	}

	if b.cfg.Debug && msg.Event == types.EventMapClicked {
		if pos, ok := msg.TouchLatLng(); ok {
			b.log.Debug("map clicked",
				zap.Float64("lat", pos.Lat),
				zap.Float64("lng", pos.Lng))
		}
	}

	b.mu.Lock()
	handler := b.onMessage
	b.mu.Unlock()
	if handler != nil {
		handler(msg)
	}
}

// initialize performs the one-way Uninitialized -> Initialized transition
// and dispatches the combined startup message. Subsequent calls are no-ops.
func (b *Bridge) initialize() {
	b.mu.Lock()
	if b.initialized {
		b.mu.Unlock()
		return
	}
	b.initialized = true
	msg := b.snapshotLocked()
	// Record the defaulted slices as seen so a later host set of the same
	// values does not re-dispatch.
	b.changedLocked(sliceLayers, msg.MapLayers)
	b.changedLocked(sliceZoom, *msg.Zoom)

	// Take the ordering lock before releasing mu: a setter that observes
	// the gate open cannot inject ahead of the startup snapshot.
	b.dispatchMu.Lock()
	b.mu.Unlock()

	b.log.Info("engine ready, sending startup state")
	b.metrics.StartupMessages.Inc()
	b.dispatch(msg, sliceStartup)
	b.dispatchMu.Unlock()
}

func decodeEvent(raw string) (types.WebviewLeafletMessage, error) {
	var msg types.WebviewLeafletMessage
	if err := sonic.UnmarshalString(raw, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return msg, nil
}
