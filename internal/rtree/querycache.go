package rtree

import (
	"container/list"
	"math"
	"sync"

	"github.com/NoahdaBoat/gisevo/internal/geo"
)

// queryCache memoizes Query results keyed by a quantized bounding box, with
// LRU eviction at capacity. get/put mutate the map and list on every call
// (promoting a hit to the front, evicting the back on overflow), so both
// are guarded by mu: a Tree built with EnableQueryCache is safe for
// concurrent Query calls, matching the concurrent-read contract its
// owners (mapdb.Database among them) advertise over it.
type queryCache struct {
	mu       sync.Mutex
	capacity int
	quantum  float64
	entries  map[quantizedBox]*list.Element
	lru      *list.List
}

type quantizedBox struct {
	minX, minY, maxX, maxY int64
}

type cacheEntry struct {
	key     quantizedBox
	results []uint64
}

func newQueryCache(capacity int, quantum float64) *queryCache {
	if quantum <= 0 {
		quantum = DefaultCacheQuantization
	}
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &queryCache{
		capacity: capacity,
		quantum:  quantum,
		entries:  make(map[quantizedBox]*list.Element),
		lru:      list.New(),
	}
}

func (c *queryCache) key(b geo.BoundingBox) quantizedBox {
	q := func(v float64) int64 { return int64(math.Round(v / c.quantum)) }
	return quantizedBox{q(b.MinX), q(b.MinY), q(b.MaxX), q(b.MaxY)}
}

// get returns a cloned copy of the cached result for b, if present.
func (c *queryCache) get(b geo.BoundingBox) ([]uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.key(b)
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	entry := elem.Value.(*cacheEntry)
	clone := make([]uint64, len(entry.results))
	copy(clone, entry.results)
	return clone, true
}

// put stores results for b, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *queryCache) put(b geo.BoundingBox, results []uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.key(b)
	if elem, ok := c.entries[key]; ok {
		clone := make([]uint64, len(results))
		copy(clone, results)
		elem.Value.(*cacheEntry).results = clone
		c.lru.MoveToFront(elem)
		return
	}

	clone := make([]uint64, len(results))
	copy(clone, results)
	entry := &cacheEntry{key: key, results: clone}
	elem := c.lru.PushFront(entry)
	c.entries[key] = elem

	for c.lru.Len() > c.capacity {
		back := c.lru.Back()
		if back == nil {
			break
		}
		c.lru.Remove(back)
		delete(c.entries, back.Value.(*cacheEntry).key)
	}
}

// invalidate drops every cached entry. Called on any insert or clear.
func (c *queryCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[quantizedBox]*list.Element)
	c.lru.Init()
}
