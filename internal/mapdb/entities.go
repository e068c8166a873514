package mapdb

import (
	"github.com/paulmach/osm"

	"github.com/NoahdaBoat/gisevo/internal/binfmt"
	"github.com/NoahdaBoat/gisevo/internal/enum"
)

// Node is a persistent point loaded from the streets file. It is created
// during load, never mutated, and destroyed at Clear.
type Node struct {
	OSMID osm.NodeID
	Lat   float64
	Lon   float64
	Tags  []binfmt.Tag
}

// StreetSegment is a directed highway piece between two endpoint nodes
// plus zero or more interior curve nodes. NodeRefs always has length >= 2;
// the first and last entries are the endpoint intersections.
type StreetSegment struct {
	OSMID       osm.WayID
	Category    enum.HighwayCategory
	MaxSpeedKPH float32 // sentinel -1 means unknown
	Name        string
	NodeRefs    []osm.NodeID
	Tags        []binfmt.Tag
}

// IsClosed reports whether the segment's first and last node refs
// coincide. It is always derived, never stored, so a stale cached value
// can never be observed by a caller.
func (s StreetSegment) IsClosed() bool {
	return len(s.NodeRefs) >= 2 && s.NodeRefs[0] == s.NodeRefs[len(s.NodeRefs)-1]
}

// POI is a geotagged named entity distinct from street nodes, such as a
// cafe or a museum.
type POI struct {
	OSMID    osm.NodeID
	Lat      float64
	Lon      float64
	Category string // free-form tag-derived label, e.g. "amenity:cafe"
	Name     string
	Tags     []binfmt.Tag
}

// Feature is a polyline or polygon attached to nodes, such as a park or a
// building footprint. Its point sequence is derived on query by
// dereferencing NodeRefs through the node id index.
type Feature struct {
	OSMID    osm.WayID
	Type     enum.FeatureType
	Name     string
	NodeRefs []osm.NodeID
	Tags     []binfmt.Tag
}

// IsClosed reports whether the feature's first and last node refs
// coincide.
func (f Feature) IsClosed() bool {
	return len(f.NodeRefs) >= 2 && f.NodeRefs[0] == f.NodeRefs[len(f.NodeRefs)-1]
}

// Relation is an n-ary OSM grouping. MemberIDs, MemberTypes, and
// MemberRoles share length; MemberIDs are raw OSM ids rather than typed
// per-kind ids because the three member kinds share one id space here.
type Relation struct {
	OSMID       osm.RelationID
	Tags        []binfmt.Tag
	MemberIDs   []int64
	MemberTypes []enum.RelationMemberType
	MemberRoles []string
}

// Intersection is derived: any node referenced as an endpoint by two or
// more segments. It is never loaded directly; Database.buildIndexes
// produces the parallel intersectionNodeIDs/intersectionSegments tables
// this type's accessors read from.
type Intersection struct {
	NodeID       osm.NodeID
	SegmentIndex []int
}
