// Package cache provides pipeline result caching with pluggable backends.
//
// Two stages of the board pipeline are cacheable: the computed board (keyed
// by the concept payload and the prior snapshot it merged against) and
// rendered artifacts (keyed by the board content and output format). Keys are
// content-addressed, so a cache never serves stale results; entries only ever
// become unreachable.
//
// Backends: FileCache for the CLI, RedisCache for serve mode, NullCache to
// disable caching entirely. ScopedKeyer isolates key namespaces when several
// tenants share one backend.
package cache

import (
	"context"
	"time"
)

// =============================================================================
// TTL Policy
// =============================================================================

// Cache lifetimes per entry class. Content-addressed keys make long TTLs
// safe; these bound disk and memory usage, not staleness.
const (
	// BoardTTL applies to computed board layouts.
	BoardTTL = 24 * time.Hour

	// ArtifactTTL applies to rendered SVG/PNG/DOT artifacts.
	ArtifactTTL = 7 * 24 * time.Hour
)

// =============================================================================
// Interfaces
// =============================================================================

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the pipeline's cacheable stages.
type Keyer interface {
	// BoardKey keys a computed board by its inputs.
	BoardKey(conceptHash, priorHash string, opts BoardKeyOpts) string

	// ArtifactKey keys a rendered artifact by board content and format.
	ArtifactKey(boardHash string, opts ArtifactKeyOpts) string
}

// BoardKeyOpts are the layout inputs that affect the computed board beyond
// the concept and prior snapshot themselves.
type BoardKeyOpts struct {
	// EngineVersion invalidates cached boards across algorithm changes.
	EngineVersion string
}

// ArtifactKeyOpts are the render inputs that affect the artifact beyond the
// board itself.
type ArtifactKeyOpts struct {
	Format        string
	ProducesEdges bool
	Detailed      bool
}

// =============================================================================
// Default Keyer
// =============================================================================

// DefaultKeyer generates content-addressed keys in the form prefix:sha256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// BoardKey generates a key for a computed board.
func (k *DefaultKeyer) BoardKey(conceptHash, priorHash string, opts BoardKeyOpts) string {
	return hashKey("board", conceptHash, priorHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(boardHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", boardHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
