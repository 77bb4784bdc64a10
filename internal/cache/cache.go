// Package cache memoizes graph-analysis and agentic results by a stable
// request fingerprint (§4.4). Sharded locking is grounded on the teacher's
// mutex-per-store discipline (internal/store/local_core.go's single
// sync.RWMutex generalized here into N independently-locked shards so
// unrelated keys don't contend), and miss coalescing uses
// golang.org/x/sync/singleflight, a dependency already present in the
// teacher's go.mod (via golang.org/x/sync) but unused by its own code.
package cache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"

	"codegraph/internal/logging"

	"golang.org/x/sync/singleflight"
)

// Kind selects a TTL and eviction quota (§4.4: "TTL is per-kind").
type Kind string

const (
	KindGraphAnalysis Kind = "graph_analysis"
	KindAgentic       Kind = "agentic"
	KindRawNode       Kind = "raw_node"
)

// DefaultTTLs are the per-kind TTLs spec.md §4.4 names.
var DefaultTTLs = map[Kind]time.Duration{
	KindGraphAnalysis: 5 * time.Minute,
	KindAgentic:       15 * time.Minute,
	KindRawNode:       60 * time.Minute,
}

const numShards = 16

// Cache is a sharded, TTL'd, LRU-evicting memoization layer with
// singleflight miss coalescing.
type Cache struct {
	shards [numShards]*shard
	quotas map[Kind]int
	ttls   map[Kind]time.Duration
	group  singleflight.Group
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*list.Element // key -> LRU element
	order   *list.List               // front = most recently used
}

type cacheItem struct {
	key       string
	kind      Kind
	value     []byte
	expiresAt time.Time
	tags      []string
}

// New constructs a Cache. quotaPerKind bounds how many live entries each
// Kind may hold per shard before LRU eviction kicks in (§4.4:
// "size-bounded LRU with a per-kind quota").
func New(quotaPerKind int) *Cache {
	if quotaPerKind <= 0 {
		quotaPerKind = 10_000
	}
	c := &Cache{
		quotas: map[Kind]int{
			KindGraphAnalysis: quotaPerKind,
			KindAgentic:       quotaPerKind,
			KindRawNode:       quotaPerKind,
		},
		ttls: DefaultTTLs,
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]*list.Element), order: list.New()}
	}
	return c
}

func (c *Cache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%numShards]
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) ([]byte, bool) {
	sh := c.shardFor(key)
	sh.mu.RLock()
	el, ok := sh.entries[key]
	sh.mu.RUnlock()
	if !ok {
		return nil, false
	}

	item := el.Value.(*cacheItem)
	if time.Now().After(item.expiresAt) {
		sh.mu.Lock()
		sh.removeLocked(key)
		sh.mu.Unlock()
		return nil, false
	}

	sh.mu.Lock()
	sh.order.MoveToFront(el)
	sh.mu.Unlock()

	return item.value, true
}

// Put stores value under key for kind with ttl (ttl <= 0 uses kind's
// default per §4.4).
func (c *Cache) Put(key string, kind Kind, value []byte, ttl time.Duration) {
	c.PutTagged(key, kind, value, ttl, nil)
}

// PutTagged is Put plus a set of node-prefix tags recording which nodes the
// cached result depends on, so a later graph write can invalidate it via
// OnNodeWrite without needing to know the SHA-256 key in advance.
func (c *Cache) PutTagged(key string, kind Kind, value []byte, ttl time.Duration, tags []string) {
	if ttl <= 0 {
		ttl = c.ttls[kind]
	}
	sh := c.shardFor(key)
	item := &cacheItem{key: key, kind: kind, value: value, expiresAt: time.Now().Add(ttl), tags: tags}

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if el, ok := sh.entries[key]; ok {
		el.Value = item
		sh.order.MoveToFront(el)
		return
	}

	el := sh.order.PushFront(item)
	sh.entries[key] = el
	sh.evictOverQuotaLocked(kind, c.quotas[kind])
}

func (sh *shard) removeLocked(key string) {
	if el, ok := sh.entries[key]; ok {
		sh.order.Remove(el)
		delete(sh.entries, key)
	}
}

// evictOverQuotaLocked drops least-recently-used entries of kind until the
// shard holds at most quota of them. Quota is per (shard, kind), so the
// effective global quota for a kind is roughly quota * numShards.
func (sh *shard) evictOverQuotaLocked(kind Kind, quota int) {
	count := 0
	for e := sh.order.Front(); e != nil; e = e.Next() {
		if e.Value.(*cacheItem).kind == kind {
			count++
		}
	}
	if count <= quota {
		return
	}

	for e := sh.order.Back(); e != nil && count > quota; {
		prev := e.Prev()
		item := e.Value.(*cacheItem)
		if item.kind == kind {
			sh.order.Remove(e)
			delete(sh.entries, item.key)
			count--
		}
		e = prev
	}
}

// InvalidateByTagPrefix removes every entry carrying a tag that starts with
// one of prefixes. Used by PrefixWatcher to sweep entries whose dependent
// nodes were just written, without re-entering shard locks.
func (c *Cache) InvalidateByTagPrefix(prefixes []string) int {
	removed := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		for key, el := range sh.entries {
			item := el.Value.(*cacheItem)
			if itemTaggedUnderAny(item, prefixes) {
				sh.removeLocked(key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

func itemTaggedUnderAny(item *cacheItem, prefixes []string) bool {
	for _, tag := range item.tags {
		for _, prefix := range prefixes {
			if len(tag) >= len(prefix) && tag[:len(prefix)] == prefix {
				return true
			}
		}
	}
	return false
}

// Invalidate removes every entry whose key matches predicate (§4.4:
// "a predicate-driven invalidation sweep runs when the graph store reports
// writes to any node matching a registered prefix").
func (c *Cache) Invalidate(predicate func(key string) bool) int {
	removed := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		for key := range sh.entries {
			if predicate(key) {
				sh.removeLocked(key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	if removed > 0 {
		logging.Get(logging.CategoryCache).Debug("invalidation sweep removed %d entries", removed)
	}
	return removed
}

// GetOrCompute returns the cached value for key, computing it via compute
// on a miss. Concurrent misses for the same key are coalesced: the first
// caller runs compute, the rest wait for its result. A failed compute is
// never cached, matching §4.4's "leader failure is not cached".
func (c *Cache) GetOrCompute(key string, kind Kind, ttl time.Duration, compute func() ([]byte, error)) ([]byte, error) {
	return c.GetOrComputeTagged(key, kind, ttl, nil, compute)
}

// GetOrComputeTagged is GetOrCompute plus tags recorded on a successful
// compute (see PutTagged).
func (c *Cache) GetOrComputeTagged(key string, kind Kind, ttl time.Duration, tags []string, compute func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.PutTagged(key, kind, result, ttl, tags)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
