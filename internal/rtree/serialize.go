package rtree

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/NoahdaBoat/gisevo/internal/geo"
	"github.com/NoahdaBoat/gisevo/internal/geoerr"
)

const (
	serializationMagic   = "RTREE1" // 6 bytes, written verbatim
	serializationVersion = uint32(1)

	// MaxDeserializationDepth bounds recursion while reading untrusted
	// bytes; exceeding it means the stream is corrupted (or, in principle,
	// circular) rather than a legitimately deep tree.
	MaxDeserializationDepth = 100

	// MaxReasonableItems and MaxReasonableChildren are far above MaxItems
	// and exist only to catch a corrupted length prefix before it causes
	// an enormous allocation.
	MaxReasonableItems    = 1_000_000
	MaxReasonableChildren = 1_000
)

func writeBool(w io.Writer, b bool) error {
	v := byte(0)
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeF64(w io.Writer, v float64) error {
	return writeU64(w, math.Float64bits(v))
}

func readF64(r io.Reader) (float64, error) {
	u, err := readU64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func writeBounds(w io.Writer, b geo.BoundingBox) error {
	for _, v := range []float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if err := writeF64(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readBounds(r io.Reader) (geo.BoundingBox, error) {
	vals := make([]float64, 4)
	for i := range vals {
		v, err := readF64(r)
		if err != nil {
			return geo.BoundingBox{}, err
		}
		vals[i] = v
	}
	return geo.BoundingBox{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}, nil
}

// Serialize writes the tree's configuration and full node structure to w:
// magic, version, options, then a preorder walk of the tree.
func (t *Tree) Serialize(w io.Writer) error {
	if _, err := w.Write([]byte(serializationMagic)); err != nil {
		return geoerr.Wrap(err, geoerr.CodeSerialization, "write r-tree magic")
	}
	if err := binary.Write(w, binary.LittleEndian, serializationVersion); err != nil {
		return geoerr.Wrap(err, geoerr.CodeSerialization, "write r-tree version")
	}

	opts := t.opts
	for _, b := range []bool{opts.EnableSpatialClustering, opts.EnableQueryCache, opts.EnableMemoryPool, opts.EnableSpaceFillingSort} {
		if err := writeBool(w, b); err != nil {
			return geoerr.Wrap(err, geoerr.CodeSerialization, "write r-tree options")
		}
	}
	if err := writeU64(w, uint64(opts.CacheCapacity)); err != nil {
		return geoerr.Wrap(err, geoerr.CodeSerialization, "write r-tree cache capacity")
	}
	if err := writeF64(w, opts.CacheQuantization); err != nil {
		return geoerr.Wrap(err, geoerr.CodeSerialization, "write r-tree cache quantization")
	}

	if err := serializeNode(w, t.root); err != nil {
		return geoerr.Wrap(err, geoerr.CodeSerialization, "write r-tree nodes")
	}
	return nil
}

func serializeNode(w io.Writer, n *node) error {
	if n == nil {
		return writeBool(w, true) // null marker
	}
	if err := writeBool(w, false); err != nil {
		return err
	}
	if err := writeBool(w, n.isLeaf); err != nil {
		return err
	}
	if err := writeBounds(w, n.bounds); err != nil {
		return err
	}

	if n.isLeaf {
		if err := writeU64(w, uint64(len(n.items))); err != nil {
			return err
		}
		for _, item := range n.items {
			if err := writeU64(w, item.Data); err != nil {
				return err
			}
			if err := writeBounds(w, item.Bounds); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeU64(w, uint64(len(n.children))); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := serializeNode(w, c); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize replaces the tree's contents by reading a stream previously
// produced by Serialize. Any failure leaves the tree cleared and returns a
// *geoerr.Error: CodeInvalidFormat for a magic mismatch, CodeVersionMismatch
// for an unknown version, CodeCorrupted for excessive depth, unreasonable
// item/child counts, or non-finite bounds, and CodeDeserialization for a
// short read. The caller (the cache manager) can then delete the cache
// file and fall back to a from-binaries rebuild.
func (t *Tree) Deserialize(r io.Reader) error {
	t.Clear()

	magic := make([]byte, len(serializationMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return geoerr.Wrap(err, geoerr.CodeDeserialization, "read r-tree magic")
	}
	if string(magic) != serializationMagic {
		return geoerr.New(geoerr.CodeInvalidFormat, "r-tree magic mismatch").WithDetail("got", string(magic))
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return geoerr.Wrap(err, geoerr.CodeDeserialization, "read r-tree version")
	}
	if version != serializationVersion {
		return geoerr.New(geoerr.CodeVersionMismatch, "unsupported r-tree serialization version").
			WithDetail("got", version).WithDetail("want", serializationVersion)
	}

	var opts Options
	bools := make([]bool, 4)
	for i := range bools {
		b, err := readBool(r)
		if err != nil {
			return geoerr.Wrap(err, geoerr.CodeDeserialization, "read r-tree options")
		}
		bools[i] = b
	}
	opts.EnableSpatialClustering, opts.EnableQueryCache, opts.EnableMemoryPool, opts.EnableSpaceFillingSort =
		bools[0], bools[1], bools[2], bools[3]

	capacity, err := readU64(r)
	if err != nil {
		return geoerr.Wrap(err, geoerr.CodeDeserialization, "read r-tree cache capacity")
	}
	opts.CacheCapacity = int(capacity)

	quantum, err := readF64(r)
	if err != nil {
		return geoerr.Wrap(err, geoerr.CodeDeserialization, "read r-tree cache quantization")
	}
	opts.CacheQuantization = quantum

	// Reset pool and cache before recreating the root, matching the
	// source's "reset root before recreating pool" ordering to avoid the
	// old pool freeing nodes the new root would still reference.
	t.opts = opts
	t.pool = newNodePool(opts.EnableMemoryPool)
	if opts.EnableQueryCache {
		t.cache = newQueryCache(opts.CacheCapacity, opts.CacheQuantization)
	} else {
		t.cache = nil
	}

	root, err := deserializeNodeWithDepth(r, 0)
	if err != nil {
		t.root = &node{isLeaf: true}
		return err
	}
	if root == nil {
		root = &node{isLeaf: true}
	}
	t.root = root
	return nil
}

func deserializeNodeWithDepth(r io.Reader, depth int) (*node, error) {
	if depth > MaxDeserializationDepth {
		return nil, geoerr.New(geoerr.CodeCorrupted, "r-tree deserialization exceeded maximum depth").
			WithDetail("depth", depth).WithDetail("max", MaxDeserializationDepth)
	}

	isNull, err := readBool(r)
	if err != nil {
		return nil, geoerr.Wrap(err, geoerr.CodeDeserialization, "read null marker").WithDetail("depth", depth)
	}
	if isNull {
		return nil, nil
	}

	isLeaf, err := readBool(r)
	if err != nil {
		return nil, geoerr.Wrap(err, geoerr.CodeDeserialization, "read node type").WithDetail("depth", depth)
	}

	bounds, err := readBounds(r)
	if err != nil {
		return nil, geoerr.Wrap(err, geoerr.CodeDeserialization, "read bounds").WithDetail("depth", depth)
	}
	if !bounds.Finite() {
		return nil, geoerr.New(geoerr.CodeCorrupted, "r-tree node has non-finite bounds").WithDetail("depth", depth)
	}

	n := &node{isLeaf: isLeaf, bounds: bounds}

	if isLeaf {
		count, err := readU64(r)
		if err != nil {
			return nil, geoerr.Wrap(err, geoerr.CodeDeserialization, "read item count").WithDetail("depth", depth)
		}
		if count > MaxReasonableItems {
			return nil, geoerr.New(geoerr.CodeCorrupted, "unreasonable r-tree leaf item count").
				WithDetail("count", count).WithDetail("max", MaxReasonableItems).WithDetail("depth", depth)
		}
		n.items = make([]Item, 0, count)
		for i := uint64(0); i < count; i++ {
			data, err := readU64(r)
			if err != nil {
				return nil, geoerr.Wrap(err, geoerr.CodeDeserialization, "read item data").WithDetail("depth", depth)
			}
			b, err := readBounds(r)
			if err != nil {
				return nil, geoerr.Wrap(err, geoerr.CodeDeserialization, "read item bounds").WithDetail("depth", depth)
			}
			if !b.Finite() {
				return nil, geoerr.New(geoerr.CodeCorrupted, "r-tree item has non-finite bounds").WithDetail("depth", depth)
			}
			n.items = append(n.items, Item{Data: data, Bounds: b})
		}
		return n, nil
	}

	count, err := readU64(r)
	if err != nil {
		return nil, geoerr.Wrap(err, geoerr.CodeDeserialization, "read child count").WithDetail("depth", depth)
	}
	if count > MaxReasonableChildren {
		return nil, geoerr.New(geoerr.CodeCorrupted, "unreasonable r-tree child count").
			WithDetail("count", count).WithDetail("max", MaxReasonableChildren).WithDetail("depth", depth)
	}
	n.children = make([]*node, 0, count)
	for i := uint64(0); i < count; i++ {
		child, err := deserializeNodeWithDepth(r, depth+1)
		if err != nil {
			return nil, err
		}
		if child != nil {
			n.children = append(n.children, child)
		}
	}
	return n, nil
}
