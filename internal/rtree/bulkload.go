package rtree

import (
	"sort"

	"github.com/golang/geo/s2"
)

// BulkLoad replaces the tree's contents with a freshly packed tree built
// from items in one pass. This produces a more balanced tree than
// incrementally inserting the same items, and is the preferred
// construction path when the full entry set is known up front (database
// load, cache rebuild).
func (t *Tree) BulkLoad(items []Item) {
	t.pool.release(t.root)
	if t.cache != nil {
		t.cache.invalidate()
	}

	if len(items) == 0 {
		t.root = &node{isLeaf: true}
		return
	}

	ordered := make([]Item, len(items))
	copy(ordered, items)
	sortBySpaceFillingOrder(ordered, t.opts.EnableSpaceFillingSort)

	// Pack the sorted items into leaves of MaxItems, then repeatedly pack
	// the previous layer into parents of the same fanout until a single
	// node remains.
	layer := make([]*node, 0, (len(ordered)+MaxItems-1)/MaxItems)
	for i := 0; i < len(ordered); i += MaxItems {
		end := i + MaxItems
		if end > len(ordered) {
			end = len(ordered)
		}
		leaf := &node{isLeaf: true, items: append([]Item(nil), ordered[i:end]...)}
		leaf.updateBounds()
		layer = append(layer, leaf)
	}

	for len(layer) > 1 {
		next := make([]*node, 0, (len(layer)+MaxItems-1)/MaxItems)
		for i := 0; i < len(layer); i += MaxItems {
			end := i + MaxItems
			if end > len(layer) {
				end = len(layer)
			}
			parent := t.pool.get()
			parent.children = append(parent.children, layer[i:end]...)
			parent.updateBounds()
			next = append(next, parent)
		}
		layer = next
	}

	t.root = layer[0]
}

// sortBySpaceFillingOrder orders items by their bounds' midpoint along a
// Hilbert space-filling curve (via s2's cell ID ordering), which keeps
// spatially nearby entries adjacent and yields a better-balanced bulk-load
// tree than a plain coordinate sort. When disabled, falls back to sorting
// by bounds midpoint X only, matching the incremental split rule.
func sortBySpaceFillingOrder(items []Item, useSpaceFilling bool) {
	if !useSpaceFilling {
		sort.Slice(items, func(i, j int) bool {
			return midX(items[i].Bounds) < midX(items[j].Bounds)
		})
		return
	}

	keys := make([]uint64, len(items))
	for i, it := range items {
		x, y := it.Bounds.Center()
		keys[i] = uint64(s2.CellIDFromLatLng(s2.LatLngFromDegrees(y, x)))
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })

	ordered := make([]Item, len(items))
	for i, j := range idx {
		ordered[i] = items[j]
	}
	copy(items, ordered)
}
