package mapdb

import (
	"math"

	"github.com/paulmach/osm"

	"github.com/NoahdaBoat/gisevo/internal/geo"
	"github.com/NoahdaBoat/gisevo/internal/obslog"
	"github.com/NoahdaBoat/gisevo/internal/rtree"
)

// buildIndexes computes global bounds, populates the OSM-id lookup maps
// and the street-name map, derives the intersection tables, and finally
// builds the four spatial indexes. Callers must hold db.mu for writing.
func (db *Database) buildIndexes() {
	db.buildDerivedTablesLocked()
	db.buildSpatialIndexesLocked()

	db.log.Event(obslog.LevelInfo, "map indexes built",
		obslog.F("nodes", len(db.nodes)),
		obslog.F("segments", len(db.segments)),
		obslog.F("intersections", len(db.intersectionNodeIDs)),
		obslog.F("pois", len(db.pois)),
		obslog.F("features", len(db.features)),
		obslog.F("relations", len(db.relations)),
	)
}

// buildDerivedTablesLocked computes global bounds and every lookup table
// derived from the entity vectors, but does not touch the R-trees. The
// cache manager uses this alone when restoring from a cache file, where
// the R-trees are deserialized directly rather than rebuilt by bulk-load.
func (db *Database) buildDerivedTablesLocked() {
	db.computeBoundsLocked()

	db.nodeIDToIndex = make(map[osm.NodeID]int, len(db.nodes))
	for i, n := range db.nodes {
		db.nodeIDToIndex[n.OSMID] = i
	}

	db.wayIDToSegmentIndex = make(map[osm.WayID]int, len(db.segments))
	for i, s := range db.segments {
		db.wayIDToSegmentIndex[s.OSMID] = i
	}

	db.relationIDToIndex = make(map[osm.RelationID]int, len(db.relations))
	for i, r := range db.relations {
		db.relationIDToIndex[r.OSMID] = i
	}

	db.streetNameToFirstSegment = make(map[string]int)
	for i, s := range db.segments {
		if s.Name == "" {
			continue
		}
		if _, exists := db.streetNameToFirstSegment[s.Name]; !exists {
			db.streetNameToFirstSegment[s.Name] = i
		}
	}

	db.buildIntersectionsLocked()
}

func (db *Database) computeBoundsLocked() {
	if len(db.nodes) == 0 {
		db.minLat, db.maxLat, db.minLon, db.maxLon, db.avgLatRad = 0, 0, 0, 0, 0
		return
	}

	db.minLat, db.maxLat = db.nodes[0].Lat, db.nodes[0].Lat
	db.minLon, db.maxLon = db.nodes[0].Lon, db.nodes[0].Lon
	for _, n := range db.nodes {
		db.minLat = math.Min(db.minLat, n.Lat)
		db.maxLat = math.Max(db.maxLat, n.Lat)
		db.minLon = math.Min(db.minLon, n.Lon)
		db.maxLon = math.Max(db.maxLon, n.Lon)
	}
	db.avgLatRad = avgLatRadians(db.nodes)
}

// buildIntersectionsLocked scans segment endpoints and derives every node
// referenced as a first/last ref by two or more segments.
func (db *Database) buildIntersectionsLocked() {
	nodeToSegments := make(map[osm.NodeID][]int)
	for segIdx, s := range db.segments {
		if len(s.NodeRefs) < 2 {
			continue
		}
		front, back := s.NodeRefs[0], s.NodeRefs[len(s.NodeRefs)-1]
		nodeToSegments[front] = append(nodeToSegments[front], segIdx)
		nodeToSegments[back] = append(nodeToSegments[back], segIdx)
	}

	db.intersectionNodeIDs = db.intersectionNodeIDs[:0]
	db.intersectionSegments = db.intersectionSegments[:0]
	for nodeID, segIndices := range nodeToSegments {
		if len(segIndices) < 2 {
			continue
		}
		db.intersectionNodeIDs = append(db.intersectionNodeIDs, nodeID)
		db.intersectionSegments = append(db.intersectionSegments, segIndices)
	}
}

// buildSpatialIndexesLocked bulk-loads the four R-trees from the current
// entity vectors and derived tables. Entries whose node refs can't be
// resolved through nodeIDToIndex are dropped from the index (never from
// the entity vector itself).
func (db *Database) buildSpatialIndexesLocked() {
	streetEntries := make([]rtree.Item, 0, len(db.segments))
	for i, s := range db.segments {
		if len(s.NodeRefs) < 2 {
			continue
		}
		fromIdx, ok1 := db.nodeIDToIndex[s.NodeRefs[0]]
		toIdx, ok2 := db.nodeIDToIndex[s.NodeRefs[len(s.NodeRefs)-1]]
		if !ok1 || !ok2 {
			continue
		}
		from, to := db.nodes[fromIdx], db.nodes[toIdx]
		bounds := geo.BoundingBox{
			MinX: math.Min(from.Lon, to.Lon),
			MinY: math.Min(from.Lat, to.Lat),
			MaxX: math.Max(from.Lon, to.Lon),
			MaxY: math.Max(from.Lat, to.Lat),
		}
		streetEntries = append(streetEntries, rtree.Item{Data: uint64(i), Bounds: bounds})
	}
	db.streetRTree.BulkLoad(streetEntries)

	intersectionEntries := make([]rtree.Item, 0, len(db.intersectionNodeIDs))
	for i, nodeID := range db.intersectionNodeIDs {
		idx, ok := db.nodeIDToIndex[nodeID]
		if !ok {
			continue
		}
		n := db.nodes[idx]
		intersectionEntries = append(intersectionEntries, rtree.Item{Data: uint64(i), Bounds: geo.FromPoint(n.Lon, n.Lat)})
	}
	db.intersectionRTree.BulkLoad(intersectionEntries)

	poiEntries := make([]rtree.Item, 0, len(db.pois))
	for i, p := range db.pois {
		poiEntries = append(poiEntries, rtree.Item{Data: uint64(i), Bounds: geo.FromPoint(p.Lon, p.Lat)})
	}
	db.poiRTree.BulkLoad(poiEntries)

	featureEntries := make([]rtree.Item, 0, len(db.features))
	for i, f := range db.features {
		bounds, ok := db.featureBoundsLocked(f)
		if !ok {
			continue
		}
		featureEntries = append(featureEntries, rtree.Item{Data: uint64(i), Bounds: bounds})
	}
	db.featureRTree.BulkLoad(featureEntries)
}

func (db *Database) featureBoundsLocked(f Feature) (geo.BoundingBox, bool) {
	if len(f.NodeRefs) == 0 {
		return geo.BoundingBox{}, false
	}
	bounds := geo.BoundingBox{MinX: math.MaxFloat64, MinY: math.MaxFloat64, MaxX: -math.MaxFloat64, MaxY: -math.MaxFloat64}
	found := false
	for _, ref := range f.NodeRefs {
		idx, ok := db.nodeIDToIndex[ref]
		if !ok {
			continue
		}
		n := db.nodes[idx]
		bounds.MinX = math.Min(bounds.MinX, n.Lon)
		bounds.MinY = math.Min(bounds.MinY, n.Lat)
		bounds.MaxX = math.Max(bounds.MaxX, n.Lon)
		bounds.MaxY = math.Max(bounds.MaxY, n.Lat)
		found = true
	}
	if !found {
		return geo.BoundingBox{}, false
	}
	return bounds, true
}
