package mapdb

import "github.com/NoahdaBoat/gisevo/internal/rtree"

// Snapshot is the full entity-vector content of a Database, used by the
// cache manager to serialize and restore a load without re-parsing the
// source binaries. Bounds are included because the cache file stores them
// in its metadata header; RestoreFromCache recomputes them from the
// restored nodes.
type Snapshot struct {
	Nodes     []Node
	Segments  []StreetSegment
	POIs      []POI
	Features  []Feature
	Relations []Relation

	MinLat, MaxLat, MinLon, MaxLon float64
	AvgLatRad                      float64
}

// SpatialIndexes bundles the four R-trees a cache file stores alongside
// the entity snapshot.
type SpatialIndexes struct {
	Streets       *rtree.Tree
	Intersections *rtree.Tree
	POIs          *rtree.Tree
	Features      *rtree.Tree
}

// Snapshot copies out every entity vector and the global bounds for
// serialization. It does not include the R-trees; callers that need
// those read them directly via the spatial index accessors at save time.
func (db *Database) Snapshot() Snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return Snapshot{
		Nodes:      append([]Node(nil), db.nodes...),
		Segments:   append([]StreetSegment(nil), db.segments...),
		POIs:       append([]POI(nil), db.pois...),
		Features:   append([]Feature(nil), db.features...),
		Relations:  append([]Relation(nil), db.relations...),
		MinLat:     db.minLat,
		MaxLat:     db.maxLat,
		MinLon:     db.minLon,
		MaxLon:     db.maxLon,
		AvgLatRad:  db.avgLatRad,
	}
}

// SpatialIndexes returns the database's own four R-trees for direct
// serialization by the cache manager.
func (db *Database) SpatialIndexes() SpatialIndexes {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return SpatialIndexes{
		Streets:       db.streetRTree,
		Intersections: db.intersectionRTree,
		POIs:          db.poiRTree,
		Features:      db.featureRTree,
	}
}

// RestoreFromCache replaces the database's contents with a previously
// captured Snapshot and SpatialIndexes, reconstructing the OSM-id maps
// and intersection tables from the restored entity vectors rather than
// rebuilding the R-trees (those came from the cache file directly, in
// the fixed order nodes/segments/POIs/features/relations then the four
// trees, matching the cache file layout).
func (db *Database) RestoreFromCache(snapshot Snapshot, indexes SpatialIndexes) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.nodes = snapshot.Nodes
	db.segments = snapshot.Segments
	db.pois = snapshot.POIs
	db.features = snapshot.Features
	db.relations = snapshot.Relations
	db.minLat, db.maxLat = snapshot.MinLat, snapshot.MaxLat
	db.minLon, db.maxLon = snapshot.MinLon, snapshot.MaxLon
	db.avgLatRad = snapshot.AvgLatRad

	db.buildDerivedTablesLocked()

	db.streetRTree = indexes.Streets
	db.intersectionRTree = indexes.Intersections
	db.poiRTree = indexes.POIs
	db.featureRTree = indexes.Features
}
