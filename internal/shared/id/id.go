// Package id provides prefixed ULID generation for server-assigned
// identifiers. Prefixes keep logs readable (mrk_* is always a marker);
// ULIDs keep collections sortable by creation time.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MarkerID identifies a map marker.
type MarkerID string

// ShapeID identifies a map shape.
type ShapeID string

const (
	MarkerPrefix = "mrk"
	ShapePrefix  = "shp"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator backed by crypto/rand.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator with the given entropy source.
// Deterministic sources are useful in tests.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewMarkerID generates a marker identifier.
func NewMarkerID() MarkerID {
	return MarkerID(Default().GenerateWithPrefix(MarkerPrefix))
}

// NewShapeID generates a shape identifier.
func NewShapeID() ShapeID {
	return ShapeID(Default().GenerateWithPrefix(ShapePrefix))
}
