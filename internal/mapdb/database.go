// Package mapdb owns the in-memory representation of a loaded map: the
// entity vectors (nodes, street segments, intersections, POIs, features,
// relations), the derived lookup tables built over them, and the four
// R-tree spatial indexes used to answer bounds queries.
//
// Database is the single owner of this state. The binary reader
// (internal/binfmt) and spatial index (internal/rtree) it drives hold no
// back-pointers into it; everything downstream addresses entities by
// index, never by pointer, so Clear can drop the whole state atomically.
package mapdb

import (
	"math"
	"sync"

	"github.com/paulmach/osm"

	"github.com/NoahdaBoat/gisevo/internal/obslog"
	"github.com/NoahdaBoat/gisevo/internal/rtree"
)

// Config configures a new Database. Logger may be left nil; it is then
// treated as obslog.Noop.
type Config struct {
	Logger obslog.Logger
}

// Database is the in-memory map: entity vectors, derived id/name lookup
// tables, and the four spatial indexes (streets, intersections, POIs,
// features). Mutation is only valid during Load*/Clear; between those
// calls a Database may be read concurrently by any number of goroutines.
type Database struct {
	mu sync.RWMutex

	log obslog.Logger

	nodes     []Node
	segments  []StreetSegment
	pois      []POI
	features  []Feature
	relations []Relation

	nodeIDToIndex            map[osm.NodeID]int
	wayIDToSegmentIndex      map[osm.WayID]int
	relationIDToIndex        map[osm.RelationID]int
	streetNameToFirstSegment map[string]int

	intersectionNodeIDs  []osm.NodeID
	intersectionSegments [][]int

	minLat, maxLat, minLon, maxLon float64
	avgLatRad                     float64

	streetRTree       *rtree.Tree
	intersectionRTree *rtree.Tree
	poiRTree          *rtree.Tree
	featureRTree      *rtree.Tree
}

// New constructs an empty Database ready to have LoadStreets/LoadOSM
// called on it.
func New(config Config) *Database {
	log := config.Logger
	if log == nil {
		log = obslog.Noop{}
	}
	db := &Database{log: log}
	db.resetLocked()
	return db
}

// Clear drops all entity vectors, lookup tables, and spatial indexes,
// returning the database to the state New produces. No memory-mapped
// file is held here: each load copies what it reads and closes its reader
// before returning.
func (db *Database) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.resetLocked()
}

func (db *Database) resetLocked() {
	db.nodes = nil
	db.segments = nil
	db.pois = nil
	db.features = nil
	db.relations = nil

	db.nodeIDToIndex = make(map[osm.NodeID]int)
	db.wayIDToSegmentIndex = make(map[osm.WayID]int)
	db.relationIDToIndex = make(map[osm.RelationID]int)
	db.streetNameToFirstSegment = make(map[string]int)

	db.intersectionNodeIDs = nil
	db.intersectionSegments = nil

	db.minLat, db.maxLat, db.minLon, db.maxLon = 0, 0, 0, 0
	db.avgLatRad = 0

	db.streetRTree = rtree.New(rtree.WithDefaultOptions())
	db.intersectionRTree = rtree.New(rtree.WithDefaultOptions())
	db.poiRTree = rtree.New(rtree.WithDefaultOptions())
	db.featureRTree = rtree.New(rtree.WithDefaultOptions())
}

// NodeCount returns the number of loaded nodes.
func (db *Database) NodeCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.nodes)
}

// SegmentCount returns the number of loaded street segments.
func (db *Database) SegmentCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.segments)
}

// POICount returns the number of loaded POIs.
func (db *Database) POICount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.pois)
}

// FeatureCount returns the number of loaded features.
func (db *Database) FeatureCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.features)
}

// RelationCount returns the number of loaded relations.
func (db *Database) RelationCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.relations)
}

// IntersectionCount returns the number of derived intersections.
func (db *Database) IntersectionCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.intersectionNodeIDs)
}

// Bounds returns the global bounds over every loaded node, plus the
// average latitude in radians used by callers that project to a local
// planar approximation.
func (db *Database) Bounds() (minLat, maxLat, minLon, maxLon, avgLatRad float64) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.minLat, db.maxLat, db.minLon, db.maxLon, db.avgLatRad
}

func avgLatRadians(nodes []Node) float64 {
	if len(nodes) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range nodes {
		sum += n.Lat
	}
	return (sum / float64(len(nodes))) * (math.Pi / 180.0)
}
