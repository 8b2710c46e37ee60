// Package cache stores converted documents so repeated conversions of the
// same input skip the pipeline.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared redis instance (the HTTP server)
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys come from a [Keyer]. The default keyer hashes the source text and
// every option that changes the output, so two requests share an entry
// only when they would produce the same bytes.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// TTLArtifact is the lifetime of a rendered output.
const TTLArtifact = 7 * 24 * time.Hour

// DocumentKeyOpts lists the inputs besides the source text that change a
// converted document.
type DocumentKeyOpts struct {
	ExplicitNodes  bool
	NoRedefinition bool
	Direction      string
	LayerSpacing   float64
	NodeSpacing    float64
	NodeWidth      float64
	NodeHeight     float64
	Iterations     int
	Detailed       bool  // SVG previews list node attributes
	Timestamp      int64 // unix seconds; zero when unset
}

// Keyer derives cache keys.
type Keyer interface {
	// DocumentKey keys a converted document by its source hash.
	DocumentKey(sourceHash string, opts DocumentKeyOpts) string
	// ArtifactKey keys the rendering of a document in one output format.
	ArtifactKey(documentKey, format string) string
}

// DefaultKeyer produces "doc:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey generates a key for document caching.
func (DefaultKeyer) DocumentKey(sourceHash string, opts DocumentKeyOpts) string {
	return hashKey("doc", sourceHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (DefaultKeyer) ArtifactKey(documentKey, format string) string {
	return hashKey("artifact", documentKey, format)
}
