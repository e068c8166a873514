package cache

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/paulmach/osm"

	"github.com/NoahdaBoat/gisevo/internal/binfmt"
	"github.com/NoahdaBoat/gisevo/internal/enum"
	"github.com/NoahdaBoat/gisevo/internal/mapdb"
)

// writeSnapshot writes every entity vector of snapshot in the fixed order
// the cache file layout requires: nodes, segments, POIs, features,
// relations.
func writeSnapshot(w io.Writer, s mapdb.Snapshot) error {
	if err := writeU32(w, uint32(len(s.Nodes))); err != nil {
		return err
	}
	for _, n := range s.Nodes {
		if err := writeNode(w, n); err != nil {
			return err
		}
	}

	if err := writeU32(w, uint32(len(s.Segments))); err != nil {
		return err
	}
	for _, seg := range s.Segments {
		if err := writeSegment(w, seg); err != nil {
			return err
		}
	}

	if err := writeU32(w, uint32(len(s.POIs))); err != nil {
		return err
	}
	for _, p := range s.POIs {
		if err := writePOI(w, p); err != nil {
			return err
		}
	}

	if err := writeU32(w, uint32(len(s.Features))); err != nil {
		return err
	}
	for _, f := range s.Features {
		if err := writeFeature(w, f); err != nil {
			return err
		}
	}

	if err := writeU32(w, uint32(len(s.Relations))); err != nil {
		return err
	}
	for _, rel := range s.Relations {
		if err := writeRelation(w, rel); err != nil {
			return err
		}
	}
	return nil
}

// readSnapshot reads an entity set written by writeSnapshot, in the same
// fixed order.
func readSnapshot(r io.Reader) (mapdb.Snapshot, error) {
	var s mapdb.Snapshot

	nodeCount, err := readU32(r)
	if err != nil {
		return s, err
	}
	s.Nodes = make([]mapdb.Node, nodeCount)
	for i := range s.Nodes {
		n, err := readNode(r)
		if err != nil {
			return s, err
		}
		s.Nodes[i] = n
	}

	segCount, err := readU32(r)
	if err != nil {
		return s, err
	}
	s.Segments = make([]mapdb.StreetSegment, segCount)
	for i := range s.Segments {
		seg, err := readSegment(r)
		if err != nil {
			return s, err
		}
		s.Segments[i] = seg
	}

	poiCount, err := readU32(r)
	if err != nil {
		return s, err
	}
	s.POIs = make([]mapdb.POI, poiCount)
	for i := range s.POIs {
		p, err := readPOI(r)
		if err != nil {
			return s, err
		}
		s.POIs[i] = p
	}

	featCount, err := readU32(r)
	if err != nil {
		return s, err
	}
	s.Features = make([]mapdb.Feature, featCount)
	for i := range s.Features {
		f, err := readFeature(r)
		if err != nil {
			return s, err
		}
		s.Features[i] = f
	}

	relCount, err := readU32(r)
	if err != nil {
		return s, err
	}
	s.Relations = make([]mapdb.Relation, relCount)
	for i := range s.Relations {
		rel, err := readRelation(r)
		if err != nil {
			return s, err
		}
		s.Relations[i] = rel
	}

	return s, nil
}

func writeNode(w io.Writer, n mapdb.Node) error {
	if err := writeI64(w, int64(n.OSMID)); err != nil {
		return err
	}
	if err := writeF64(w, n.Lat); err != nil {
		return err
	}
	if err := writeF64(w, n.Lon); err != nil {
		return err
	}
	return writeTags(w, n.Tags)
}

func readNode(r io.Reader) (mapdb.Node, error) {
	var n mapdb.Node
	id, err := readI64(r)
	if err != nil {
		return n, err
	}
	n.OSMID = osm.NodeID(id)
	if n.Lat, err = readF64(r); err != nil {
		return n, err
	}
	if n.Lon, err = readF64(r); err != nil {
		return n, err
	}
	if n.Tags, err = readTags(r); err != nil {
		return n, err
	}
	return n, nil
}

func writeSegment(w io.Writer, s mapdb.StreetSegment) error {
	if err := writeI64(w, int64(s.OSMID)); err != nil {
		return err
	}
	if err := writeU8(w, uint8(s.Category)); err != nil {
		return err
	}
	if err := writeF32(w, s.MaxSpeedKPH); err != nil {
		return err
	}
	if err := writeLengthPrefixedString(w, s.Name); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(s.NodeRefs))); err != nil {
		return err
	}
	for _, ref := range s.NodeRefs {
		if err := writeI64(w, int64(ref)); err != nil {
			return err
		}
	}
	return writeTags(w, s.Tags)
}

func readSegment(r io.Reader) (mapdb.StreetSegment, error) {
	var s mapdb.StreetSegment
	id, err := readI64(r)
	if err != nil {
		return s, err
	}
	s.OSMID = osm.WayID(id)

	cat, err := readU8(r)
	if err != nil {
		return s, err
	}
	s.Category = enum.HighwayCategory(cat)

	if s.MaxSpeedKPH, err = readF32(r); err != nil {
		return s, err
	}
	if s.Name, err = readLengthPrefixedString(r); err != nil {
		return s, err
	}

	refCount, err := readU32(r)
	if err != nil {
		return s, err
	}
	s.NodeRefs = make([]osm.NodeID, refCount)
	for i := range s.NodeRefs {
		ref, err := readI64(r)
		if err != nil {
			return s, err
		}
		s.NodeRefs[i] = osm.NodeID(ref)
	}

	if s.Tags, err = readTags(r); err != nil {
		return s, err
	}
	return s, nil
}

func writePOI(w io.Writer, p mapdb.POI) error {
	if err := writeI64(w, int64(p.OSMID)); err != nil {
		return err
	}
	if err := writeF64(w, p.Lat); err != nil {
		return err
	}
	if err := writeF64(w, p.Lon); err != nil {
		return err
	}
	if err := writeLengthPrefixedString(w, p.Category); err != nil {
		return err
	}
	if err := writeLengthPrefixedString(w, p.Name); err != nil {
		return err
	}
	return writeTags(w, p.Tags)
}

func readPOI(r io.Reader) (mapdb.POI, error) {
	var p mapdb.POI
	id, err := readI64(r)
	if err != nil {
		return p, err
	}
	p.OSMID = osm.NodeID(id)
	if p.Lat, err = readF64(r); err != nil {
		return p, err
	}
	if p.Lon, err = readF64(r); err != nil {
		return p, err
	}
	if p.Category, err = readLengthPrefixedString(r); err != nil {
		return p, err
	}
	if p.Name, err = readLengthPrefixedString(r); err != nil {
		return p, err
	}
	if p.Tags, err = readTags(r); err != nil {
		return p, err
	}
	return p, nil
}

func writeFeature(w io.Writer, f mapdb.Feature) error {
	if err := writeI64(w, int64(f.OSMID)); err != nil {
		return err
	}
	if err := writeU8(w, uint8(f.Type)); err != nil {
		return err
	}
	if err := writeLengthPrefixedString(w, f.Name); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(f.NodeRefs))); err != nil {
		return err
	}
	for _, ref := range f.NodeRefs {
		if err := writeI64(w, int64(ref)); err != nil {
			return err
		}
	}
	return writeTags(w, f.Tags)
}

func readFeature(r io.Reader) (mapdb.Feature, error) {
	var f mapdb.Feature
	id, err := readI64(r)
	if err != nil {
		return f, err
	}
	f.OSMID = osm.WayID(id)

	typ, err := readU8(r)
	if err != nil {
		return f, err
	}
	f.Type = enum.FeatureType(typ)

	if f.Name, err = readLengthPrefixedString(r); err != nil {
		return f, err
	}

	refCount, err := readU32(r)
	if err != nil {
		return f, err
	}
	f.NodeRefs = make([]osm.NodeID, refCount)
	for i := range f.NodeRefs {
		ref, err := readI64(r)
		if err != nil {
			return f, err
		}
		f.NodeRefs[i] = osm.NodeID(ref)
	}

	if f.Tags, err = readTags(r); err != nil {
		return f, err
	}
	return f, nil
}

func writeRelation(w io.Writer, rel mapdb.Relation) error {
	if err := writeI64(w, int64(rel.OSMID)); err != nil {
		return err
	}
	if err := writeTags(w, rel.Tags); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(rel.MemberIDs))); err != nil {
		return err
	}
	for i := range rel.MemberIDs {
		if err := writeI64(w, rel.MemberIDs[i]); err != nil {
			return err
		}
		if err := writeU8(w, uint8(rel.MemberTypes[i])); err != nil {
			return err
		}
		if err := writeLengthPrefixedString(w, rel.MemberRoles[i]); err != nil {
			return err
		}
	}
	return nil
}

func readRelation(r io.Reader) (mapdb.Relation, error) {
	var rel mapdb.Relation
	id, err := readI64(r)
	if err != nil {
		return rel, err
	}
	rel.OSMID = osm.RelationID(id)

	if rel.Tags, err = readTags(r); err != nil {
		return rel, err
	}

	memberCount, err := readU32(r)
	if err != nil {
		return rel, err
	}
	rel.MemberIDs = make([]int64, memberCount)
	rel.MemberTypes = make([]enum.RelationMemberType, memberCount)
	rel.MemberRoles = make([]string, memberCount)
	for i := 0; i < int(memberCount); i++ {
		if rel.MemberIDs[i], err = readI64(r); err != nil {
			return rel, err
		}
		typ, err := readU8(r)
		if err != nil {
			return rel, err
		}
		rel.MemberTypes[i] = enum.RelationMemberType(typ)
		if rel.MemberRoles[i], err = readLengthPrefixedString(r); err != nil {
			return rel, err
		}
	}
	return rel, nil
}

func writeTags(w io.Writer, tags []binfmt.Tag) error {
	if err := writeU32(w, uint32(len(tags))); err != nil {
		return err
	}
	for _, t := range tags {
		if err := writeLengthPrefixedString(w, t.Key); err != nil {
			return err
		}
		if err := writeLengthPrefixedString(w, t.Value); err != nil {
			return err
		}
	}
	return nil
}

func readTags(r io.Reader) ([]binfmt.Tag, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	tags := make([]binfmt.Tag, n)
	for i := range tags {
		key, err := readLengthPrefixedString(r)
		if err != nil {
			return nil, err
		}
		val, err := readLengthPrefixedString(r)
		if err != nil {
			return nil, err
		}
		tags[i] = binfmt.Tag{Key: key, Value: val}
	}
	return tags, nil
}

func writeU8(w io.Writer, v uint8) error   { return binary.Write(w, binary.LittleEndian, v) }
func writeU32(w io.Writer, v uint32) error { return binary.Write(w, binary.LittleEndian, v) }
func writeI64(w io.Writer, v int64) error  { return binary.Write(w, binary.LittleEndian, v) }
func writeF32(w io.Writer, v float32) error {
	return binary.Write(w, binary.LittleEndian, math.Float32bits(v))
}
func writeF64(w io.Writer, v float64) error {
	return binary.Write(w, binary.LittleEndian, math.Float64bits(v))
}

func readU8(r io.Reader) (uint8, error) {
	var v uint8
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readI64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readF32(r io.Reader) (float32, error) {
	var bits uint32
	if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}
func readF64(r io.Reader) (float64, error) {
	var bits uint64
	if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}
