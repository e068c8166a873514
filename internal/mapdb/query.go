package mapdb

import (
	"github.com/paulmach/osm"

	"github.com/NoahdaBoat/gisevo/internal/geo"
)

// QueryStreetsInBounds returns the indices of every street segment whose
// endpoint-derived bounding box intersects the query box. This is the raw
// R-tree candidate set; the polyline-vs-box refinement specified for
// street queries is a query-facade concern layered over this.
func (db *Database) QueryStreetsInBounds(box geo.BoundingBox) []uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.streetRTree.Query(box)
}

// QueryIntersectionsInBounds returns the indices of every intersection
// whose node lies within the query box.
func (db *Database) QueryIntersectionsInBounds(box geo.BoundingBox) []uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.intersectionRTree.Query(box)
}

// QueryPOIsInBounds returns the indices of every POI whose coordinate
// lies within the query box.
func (db *Database) QueryPOIsInBounds(box geo.BoundingBox) []uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.poiRTree.Query(box)
}

// QueryFeaturesInBounds returns the indices of every feature whose
// resolvable-node bounding box intersects the query box. No polygon
// refinement is applied; that is a renderer concern.
func (db *Database) QueryFeaturesInBounds(box geo.BoundingBox) []uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.featureRTree.Query(box)
}

// Node returns a copy of the node at index, or the zero value if index is
// out of range. Accessors never fail; stale indices after a reload return
// empty defaults rather than panicking, since callers include paint-loop
// code that must tolerate them.
func (db *Database) Node(index int) (Node, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if index < 0 || index >= len(db.nodes) {
		return Node{}, false
	}
	return db.nodes[index], true
}

// Segment returns a copy of the street segment at index.
func (db *Database) Segment(index int) (StreetSegment, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if index < 0 || index >= len(db.segments) {
		return StreetSegment{}, false
	}
	return db.segments[index], true
}

// POI returns a copy of the POI at index.
func (db *Database) POI(index int) (POI, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if index < 0 || index >= len(db.pois) {
		return POI{}, false
	}
	return db.pois[index], true
}

// Feature returns a copy of the feature at index.
func (db *Database) Feature(index int) (Feature, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if index < 0 || index >= len(db.features) {
		return Feature{}, false
	}
	return db.features[index], true
}

// Relation returns a copy of the relation at index.
func (db *Database) Relation(index int) (Relation, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if index < 0 || index >= len(db.relations) {
		return Relation{}, false
	}
	return db.relations[index], true
}

// RelationByOSMID looks up a relation by its OSM id.
func (db *Database) RelationByOSMID(id osm.RelationID) (Relation, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	idx, ok := db.relationIDToIndex[id]
	if !ok {
		return Relation{}, false
	}
	return db.relations[idx], true
}

// NodeIndexByOSMID resolves an OSM node id to its entity-vector index.
func (db *Database) NodeIndexByOSMID(id osm.NodeID) (int, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	idx, ok := db.nodeIDToIndex[id]
	return idx, ok
}

// SegmentIndexByOSMID resolves an OSM way id to its entity-vector index.
func (db *Database) SegmentIndexByOSMID(id osm.WayID) (int, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	idx, ok := db.wayIDToSegmentIndex[id]
	return idx, ok
}

// StreetName returns the name of the first segment registered under the
// given street id (a segment index), or "" if out of range.
func (db *Database) StreetName(streetID int) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if streetID < 0 || streetID >= len(db.segments) {
		return ""
	}
	return db.segments[streetID].Name
}

// FirstSegmentForStreetName returns the segment index registered for
// name (first occurrence at load time), if any.
func (db *Database) FirstSegmentForStreetName(name string) (int, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	idx, ok := db.streetNameToFirstSegment[name]
	return idx, ok
}

// IntersectionNodeID returns the OSM node id of the intersection at idx.
func (db *Database) IntersectionNodeID(idx int) (osm.NodeID, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if idx < 0 || idx >= len(db.intersectionNodeIDs) {
		return 0, false
	}
	return db.intersectionNodeIDs[idx], true
}

// IntersectionPosition returns the (lon, lat) of the intersection at idx.
func (db *Database) IntersectionPosition(idx int) (lon, lat float64, ok bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if idx < 0 || idx >= len(db.intersectionNodeIDs) {
		return 0, 0, false
	}
	nodeIdx, found := db.nodeIDToIndex[db.intersectionNodeIDs[idx]]
	if !found {
		return 0, 0, false
	}
	n := db.nodes[nodeIdx]
	return n.Lon, n.Lat, true
}

// IntersectionSegmentCount returns how many street segments touch the
// intersection at idx.
func (db *Database) IntersectionSegmentCount(idx int) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if idx < 0 || idx >= len(db.intersectionSegments) {
		return 0
	}
	return len(db.intersectionSegments[idx])
}

// IntersectionSegment returns the segment index at position k in the
// intersection idx's segment list.
func (db *Database) IntersectionSegment(k, idx int) (int, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if idx < 0 || idx >= len(db.intersectionSegments) {
		return 0, false
	}
	segs := db.intersectionSegments[idx]
	if k < 0 || k >= len(segs) {
		return 0, false
	}
	return segs[k], true
}

// StreetSegmentCurvePoint returns the (lon, lat) of the curve point at
// curvePointNum within segment segIdx. NodeRefs lays out as
// [start-intersection, curve point 0, curve point 1, ..., end-intersection],
// so curvePointNum 0 corresponds to NodeRefs[1].
func (db *Database) StreetSegmentCurvePoint(curvePointNum, segIdx int) (lon, lat float64, ok bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if segIdx < 0 || segIdx >= len(db.segments) {
		return 0, 0, false
	}
	refs := db.segments[segIdx].NodeRefs
	refIdx := curvePointNum + 1
	if refIdx < 0 || refIdx >= len(refs)-1 {
		return 0, 0, false
	}
	nodeIdx, found := db.nodeIDToIndex[refs[refIdx]]
	if !found {
		return 0, 0, false
	}
	n := db.nodes[nodeIdx]
	return n.Lon, n.Lat, true
}

// StreetSegmentCurvePointCount returns the number of interior curve
// points in segment segIdx (NodeRefs length minus the two endpoints).
func (db *Database) StreetSegmentCurvePointCount(segIdx int) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if segIdx < 0 || segIdx >= len(db.segments) {
		return 0
	}
	n := len(db.segments[segIdx].NodeRefs) - 2
	if n < 0 {
		return 0
	}
	return n
}
