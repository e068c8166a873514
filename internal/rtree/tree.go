package rtree

import (
	"math"
	"sort"

	"github.com/NoahdaBoat/gisevo/internal/geo"
)

// Tree is a balanced R-tree over axis-aligned bounding boxes, holding
// opaque uint64 item data (entity indices — the tree itself never
// dereferences them, per the arena+index ownership model: entity vectors
// own the data, the tree stores only indices and bounding boxes).
type Tree struct {
	root  *node
	opts  Options
	pool  *nodePool
	cache *queryCache
}

// New creates an empty tree configured by opts.
func New(opts Options) *Tree {
	t := &Tree{
		opts: opts,
		pool: newNodePool(opts.EnableMemoryPool),
	}
	if opts.EnableQueryCache {
		t.cache = newQueryCache(opts.CacheCapacity, opts.CacheQuantization)
	}
	t.root = &node{isLeaf: true}
	return t
}

// Options returns the tree's current configuration.
func (t *Tree) Options() Options {
	return t.opts
}

// Size returns the total number of indexed items.
func (t *Tree) Size() int {
	return t.root.count()
}

// Clear drops every node, returning interior nodes to the pool and
// resetting to an empty leaf root. The query cache is invalidated.
func (t *Tree) Clear() {
	t.pool.release(t.root)
	t.root = &node{isLeaf: true}
	if t.cache != nil {
		t.cache.invalidate()
	}
}

// Insert adds data with the given bounds, descending via choose-subtree
// and splitting any node that overflows MaxItems.
func (t *Tree) Insert(data uint64, bounds geo.BoundingBox) {
	item := Item{Data: data, Bounds: bounds}
	overflow := t.insertRecursive(t.root, item)
	if overflow != nil {
		t.handleRootSplit(overflow)
	}
	if t.cache != nil {
		t.cache.invalidate()
	}
}

func (t *Tree) insertRecursive(n *node, item Item) *node {
	if n.isLeaf {
		n.items = append(n.items, item)
		if len(n.items) > MaxItems {
			return t.splitNode(n)
		}
		n.updateBounds()
		return nil
	}

	best := t.chooseSubtree(n, item.Bounds)
	if best == nil {
		best = t.pool.get()
		best.isLeaf = true
		n.children = append(n.children, best)
	}

	overflow := t.insertRecursive(best, item)
	if overflow != nil {
		n.children = append(n.children, overflow)
		if len(n.children) > MaxItems {
			return t.splitNode(n)
		}
	}

	n.updateBounds()
	return nil
}

// chooseSubtree picks the child whose bounds would expand least to cover
// bounds, breaking ties by smaller existing area.
func (t *Tree) chooseSubtree(n *node, bounds geo.BoundingBox) *node {
	if n.isLeaf {
		return n
	}
	if len(n.children) == 0 {
		return nil
	}

	const epsilon = 1e-9
	minExpansion := math.MaxFloat64
	var best *node
	for _, child := range n.children {
		expansion := child.bounds.ExpansionArea(bounds)
		if expansion < minExpansion {
			minExpansion = expansion
			best = child
		} else if math.Abs(expansion-minExpansion) < epsilon {
			if child.bounds.Area() < best.bounds.Area() {
				best = child
			}
		}
	}
	return best
}

// splitNode sorts a node's items or children by bounds midpoint X and
// splits at the midpoint index, returning the new sibling (nil if the
// node is not over MaxItems).
func (t *Tree) splitNode(n *node) *node {
	if n.isLeaf {
		if len(n.items) <= MaxItems {
			n.updateBounds()
			return nil
		}
		sort.Slice(n.items, func(i, j int) bool {
			return midX(n.items[i].Bounds) < midX(n.items[j].Bounds)
		})
		mid := len(n.items) / 2
		sibling := &node{isLeaf: true}
		sibling.items = append(sibling.items, n.items[mid:]...)
		n.items = n.items[:mid]
		n.updateBounds()
		sibling.updateBounds()
		return sibling
	}

	if len(n.children) <= MaxItems {
		n.updateBounds()
		return nil
	}
	sort.Slice(n.children, func(i, j int) bool {
		return midX(n.children[i].bounds) < midX(n.children[j].bounds)
	})
	mid := len(n.children) / 2
	sibling := t.pool.get()
	sibling.children = append(sibling.children, n.children[mid:]...)
	n.children = n.children[:mid]
	n.updateBounds()
	sibling.updateBounds()
	return sibling
}

func (t *Tree) handleRootSplit(overflow *node) {
	newRoot := t.pool.get()
	newRoot.children = []*node{t.root, overflow}
	newRoot.updateBounds()
	t.root = newRoot
}

func midX(b geo.BoundingBox) float64 {
	return (b.MinX + b.MaxX) / 2
}

// Query returns every item whose bounds intersect bounds, in traversal
// order. If the query cache is enabled, a hit returns a cloned result
// slice without touching the tree.
func (t *Tree) Query(bounds geo.BoundingBox) []uint64 {
	if t.cache != nil {
		if hit, ok := t.cache.get(bounds); ok {
			return hit
		}
	}

	var results []uint64
	queryRecursive(t.root, bounds, &results)

	if t.cache != nil {
		t.cache.put(bounds, results)
	}
	return results
}

func queryRecursive(n *node, bounds geo.BoundingBox, results *[]uint64) {
	if n == nil || !n.bounds.Intersects(bounds) {
		return
	}
	if n.isLeaf {
		for _, item := range n.items {
			if item.Bounds.Intersects(bounds) {
				*results = append(*results, item.Data)
			}
		}
		return
	}
	for _, c := range n.children {
		queryRecursive(c, bounds, results)
	}
}
