// Package rtree implements the hand-rolled, bulk-loadable R-tree that
// indexes every entity class in the database (segments, intersections,
// POIs, features). It is a direct port of the in-tree C++ spatial index:
// incremental insert with X-midpoint splitting, bulk-load via a
// space-filling curve, depth-first range queries, an optional LRU query
// cache, an optional interior-node pool, and a depth/count/finiteness
// validated binary serialization.
package rtree

import "github.com/NoahdaBoat/gisevo/internal/geo"

// MinItems and MaxItems are the leaf/internal fanout bounds. A node splits
// once it holds more than MaxItems; nothing smaller than MinItems is
// targeted explicitly (the X-midpoint split just halves), matching the
// source tree's own behavior.
const (
	MinItems = 4
	MaxItems = 16
)

// Item is a single indexed entry: an entity's index into its owning
// vector, plus the bounding box it was inserted with.
type Item struct {
	Data   uint64
	Bounds geo.BoundingBox
}

// node is either a leaf (holding Items) or an interior node (holding
// Children). Exactly one of the two slices is populated, mirroring the
// tagged union the source tree encodes via is_leaf.
type node struct {
	bounds   geo.BoundingBox
	isLeaf   bool
	items    []Item
	children []*node
}

// updateBounds recomputes bounds as the union of the node's items or
// children. Called after every structural mutation on the path from a
// leaf back to the root.
func (n *node) updateBounds() {
	if n.isLeaf {
		if len(n.items) == 0 {
			n.bounds = geo.BoundingBox{}
			return
		}
		b := n.items[0].Bounds
		for _, it := range n.items[1:] {
			b = b.Expand(it.Bounds)
		}
		n.bounds = b
		return
	}

	if len(n.children) == 0 {
		n.bounds = geo.BoundingBox{}
		return
	}
	b := n.children[0].bounds
	for _, c := range n.children[1:] {
		b = b.Expand(c.bounds)
	}
	n.bounds = b
}

// count returns the total number of items under n, recursively.
func (n *node) count() int {
	if n.isLeaf {
		return len(n.items)
	}
	total := 0
	for _, c := range n.children {
		total += c.count()
	}
	return total
}
