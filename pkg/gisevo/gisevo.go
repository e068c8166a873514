// Package gisevo is the public façade over a loaded map: opening a map
// (from its verified cache, falling back to the source binaries), the
// bounds-query operations with the street-segment polyline refinement,
// and the per-index accessors callers use to render what a query
// returned.
package gisevo

import (
	"github.com/paulmach/orb"

	"github.com/NoahdaBoat/gisevo/internal/cache"
	"github.com/NoahdaBoat/gisevo/internal/geo"
	"github.com/NoahdaBoat/gisevo/internal/mapdb"
	"github.com/NoahdaBoat/gisevo/internal/obslog"
)

// Config describes one map to open: its source binaries, an optional
// verified on-disk cache directory, and the logging/cache tuning to use.
type Config struct {
	MapName     string
	StreetsPath string
	OSMPath     string

	// CacheDir enables the verified on-disk cache when non-empty. Opening
	// with it set tries the cache first and falls back to parsing
	// StreetsPath/OSMPath on any miss or validation failure, then writes
	// a fresh cache for next time.
	CacheDir     string
	CacheOptions cache.Options

	Logger obslog.Logger
}

// Database is a loaded map, ready for bounds queries and per-index
// accessors. It owns no file handles once Open returns; the memory-mapped
// binaries (or cache file) were fully consumed during loading.
type Database struct {
	mdb      *mapdb.Database
	cacheMgr *cache.Manager
	log      obslog.Logger
	mapName  string
}

// Open loads a map by mapName, preferring a valid cache entry under
// config.CacheDir when configured, and falling back to parsing
// StreetsPath/OSMPath otherwise. A successful from-binaries load writes a
// fresh cache entry (best effort; a failed cache write does not fail
// Open).
func Open(config Config) (*Database, error) {
	log := config.Logger
	if log == nil {
		log = obslog.Noop{}
	}

	mdb := mapdb.New(mapdb.Config{Logger: log})
	d := &Database{mdb: mdb, log: log, mapName: config.MapName}

	var cacheMgr *cache.Manager
	if config.CacheDir != "" {
		cacheMgr = cache.New(cache.Config{
			Dir:     config.CacheDir,
			Logger:  log,
			Options: config.CacheOptions,
		})
		d.cacheMgr = cacheMgr

		snapshot, indexes, err := cacheMgr.Load(config.MapName, config.StreetsPath, config.OSMPath)
		if err == nil {
			mdb.RestoreFromCache(snapshot, indexes)
			log.Event(obslog.LevelInfo, "map loaded from cache", obslog.F("map", config.MapName))
			return d, nil
		}
		log.Event(obslog.LevelInfo, "cache unavailable, loading from source binaries",
			obslog.F("map", config.MapName), obslog.F("reason", err.Error()))
	}

	if err := mdb.LoadStreets(config.StreetsPath); err != nil {
		return nil, err
	}
	if err := mdb.LoadOSM(config.OSMPath); err != nil {
		return nil, err
	}

	if cacheMgr != nil {
		snapshot := mdb.Snapshot()
		indexes := mdb.SpatialIndexes()
		if err := cacheMgr.Save(config.MapName, snapshot, indexes, config.StreetsPath, config.OSMPath); err != nil {
			log.Event(obslog.LevelWarn, "cache save failed after from-binaries load",
				obslog.F("map", config.MapName), obslog.F("error", err.Error()))
		}
	}

	return d, nil
}

// Close releases the database's in-memory state. A closed Database's
// accessors behave as if the map were empty; it must not be reused.
func (d *Database) Close() {
	d.mdb.Clear()
}

// Bounds returns the map's global coverage rectangle.
func (d *Database) Bounds() geo.BoundingBox {
	minLat, maxLat, minLon, maxLon, _ := d.mdb.Bounds()
	return geo.BoundingBox{MinX: minLon, MinY: minLat, MaxX: maxLon, MaxY: maxLat}
}

// NodeCount, SegmentCount, POICount, FeatureCount, RelationCount, and
// IntersectionCount report the size of each entity vector.
func (d *Database) NodeCount() int         { return d.mdb.NodeCount() }
func (d *Database) SegmentCount() int      { return d.mdb.SegmentCount() }
func (d *Database) POICount() int          { return d.mdb.POICount() }
func (d *Database) FeatureCount() int      { return d.mdb.FeatureCount() }
func (d *Database) RelationCount() int     { return d.mdb.RelationCount() }
func (d *Database) IntersectionCount() int { return d.mdb.IntersectionCount() }

// QueryStreetsInBounds returns the indices of street segments intersecting
// box, after the polyline refinement: a candidate from the R-tree survives
// only if its from-position, to-position, or some curve point actually
// lies inside box (the R-tree's own bounding box is looser than the
// polyline it covers).
func (d *Database) QueryStreetsInBounds(box geo.BoundingBox) []int {
	candidates := d.mdb.QueryStreetsInBounds(box)
	result := make([]int, 0, len(candidates))
	for _, c := range candidates {
		idx := int(c)
		if d.streetSegmentTouchesBox(idx, box) {
			result = append(result, idx)
		}
	}
	return result
}

func (d *Database) streetSegmentTouchesBox(segIdx int, box geo.BoundingBox) bool {
	seg, ok := d.mdb.Segment(segIdx)
	if !ok {
		return false
	}
	for _, ref := range seg.NodeRefs {
		nodeIdx, ok := d.mdb.NodeIndexByOSMID(ref)
		if !ok {
			continue
		}
		n, ok := d.mdb.Node(nodeIdx)
		if !ok {
			continue
		}
		if box.Contains(n.Lon, n.Lat) {
			return true
		}
	}
	return false
}

// QueryIntersectionsInBounds returns the indices of intersections whose
// node lies within box. No refinement is needed: point-in-box is exact.
func (d *Database) QueryIntersectionsInBounds(box geo.BoundingBox) []int {
	return toIntSlice(d.mdb.QueryIntersectionsInBounds(box))
}

// QueryPOIsInBounds returns the indices of POIs whose coordinate lies
// within box.
func (d *Database) QueryPOIsInBounds(box geo.BoundingBox) []int {
	return toIntSlice(d.mdb.QueryPOIsInBounds(box))
}

// QueryFeaturesInBounds returns the R-tree candidate indices for box
// as-is; polygon-vs-box refinement is a renderer concern, not this
// façade's.
func (d *Database) QueryFeaturesInBounds(box geo.BoundingBox) []int {
	return toIntSlice(d.mdb.QueryFeaturesInBounds(box))
}

func toIntSlice(in []uint64) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

// Node, Segment, POI, Feature, and Relation return a copy of the entity at
// index, or the zero value and false if index is out of range. They never
// panic: callers include paint-loop code that must tolerate stale indices
// across a reload.
func (d *Database) Node(index int) (mapdb.Node, bool)               { return d.mdb.Node(index) }
func (d *Database) Segment(index int) (mapdb.StreetSegment, bool)   { return d.mdb.Segment(index) }
func (d *Database) POI(index int) (mapdb.POI, bool)                 { return d.mdb.POI(index) }
func (d *Database) Feature(index int) (mapdb.Feature, bool)         { return d.mdb.Feature(index) }
func (d *Database) Relation(index int) (mapdb.Relation, bool)       { return d.mdb.Relation(index) }

// StreetName returns the name registered for streetID (a segment index).
func (d *Database) StreetName(streetID int) string {
	return d.mdb.StreetName(streetID)
}

// IntersectionPosition returns the (lon, lat) of the intersection at idx.
func (d *Database) IntersectionPosition(idx int) (lon, lat float64, ok bool) {
	return d.mdb.IntersectionPosition(idx)
}

// IntersectionSegmentCount returns how many street segments touch the
// intersection at idx.
func (d *Database) IntersectionSegmentCount(idx int) int {
	return d.mdb.IntersectionSegmentCount(idx)
}

// IntersectionSegment returns the segment index at position k in
// intersection idx's segment list.
func (d *Database) IntersectionSegment(k, idx int) (int, bool) {
	return d.mdb.IntersectionSegment(k, idx)
}

// StreetSegmentPolyline resolves segIdx's NodeRefs to coordinates and
// returns the full polyline (endpoints and interior curve points, in
// order) as an orb.LineString.
func (d *Database) StreetSegmentPolyline(segIdx int) (orb.LineString, bool) {
	seg, ok := d.mdb.Segment(segIdx)
	if !ok {
		return nil, false
	}
	line := make(orb.LineString, 0, len(seg.NodeRefs))
	for _, ref := range seg.NodeRefs {
		nodeIdx, ok := d.mdb.NodeIndexByOSMID(ref)
		if !ok {
			continue
		}
		n, ok := d.mdb.Node(nodeIdx)
		if !ok {
			continue
		}
		line = append(line, orb.Point{n.Lon, n.Lat})
	}
	return line, true
}

// FeatureGeometry resolves idx's NodeRefs to coordinates and returns an
// orb.Ring if the feature is closed, or an orb.LineString otherwise.
func (d *Database) FeatureGeometry(idx int) (orb.Geometry, bool) {
	f, ok := d.mdb.Feature(idx)
	if !ok {
		return nil, false
	}

	points := make([]orb.Point, 0, len(f.NodeRefs))
	for _, ref := range f.NodeRefs {
		nodeIdx, ok := d.mdb.NodeIndexByOSMID(ref)
		if !ok {
			continue
		}
		n, ok := d.mdb.Node(nodeIdx)
		if !ok {
			continue
		}
		points = append(points, orb.Point{n.Lon, n.Lat})
	}

	if f.IsClosed() {
		return orb.Ring(points), true
	}
	return orb.LineString(points), true
}
