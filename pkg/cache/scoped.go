package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Useful when several tenants or environments share one cache backend and
// need separate key spaces.
//
// Example usage:
//
//	// Per-user keys on a shared redis
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// BoardKey generates a prefixed key for board caching.
func (k *ScopedKeyer) BoardKey(conceptHash, priorHash string, opts BoardKeyOpts) string {
	return k.prefix + k.inner.BoardKey(conceptHash, priorHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(boardHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(boardHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
