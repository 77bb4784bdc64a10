package cache

import (
	"strings"
	"sync"

	"codegraph/internal/logging"
)

// PrefixWatcher tracks the node-id prefixes a cache cares about and sweeps
// entries tagged under a written prefix (§4.4: "a predicate-driven
// invalidation sweep runs when the graph store reports writes to any node
// matching a registered prefix"). A graphstore write hook calls OnNodeWrite
// after each commit; the graph store itself has no knowledge of the cache.
type PrefixWatcher struct {
	cache *Cache

	mu       sync.RWMutex
	prefixes map[string]struct{}
}

// NewPrefixWatcher wraps cache with prefix-registration and sweep support.
func NewPrefixWatcher(cache *Cache) *PrefixWatcher {
	return &PrefixWatcher{cache: cache, prefixes: make(map[string]struct{})}
}

// Register records prefix as one the cache should watch for writes. Callers
// typically register the prefix of every node a cached analysis touched,
// at the moment that analysis result is cached.
func (w *PrefixWatcher) Register(prefix string) {
	if prefix == "" {
		return
	}
	w.mu.Lock()
	w.prefixes[prefix] = struct{}{}
	w.mu.Unlock()
}

// OnNodeWrite invalidates every cache entry tagged with a prefix of
// nodeID's string form, sweeping those tags out of the watch set once
// swept so repeated writes to the same node are cheap no-ops.
func (w *PrefixWatcher) OnNodeWrite(nodeID string) int {
	w.mu.Lock()
	var matched []string
	for prefix := range w.prefixes {
		if strings.HasPrefix(nodeID, prefix) {
			matched = append(matched, prefix)
			delete(w.prefixes, prefix)
		}
	}
	w.mu.Unlock()

	if len(matched) == 0 {
		return 0
	}

	removed := w.cache.InvalidateByTagPrefix(matched)
	logging.Get(logging.CategoryCache).Debug("node write %s swept %d prefixes, removed %d entries", nodeID, len(matched), removed)
	return removed
}
