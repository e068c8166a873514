package mapdb

import (
	"github.com/paulmach/osm"

	"github.com/NoahdaBoat/gisevo/internal/binfmt"
	"github.com/NoahdaBoat/gisevo/internal/enum"
	"github.com/NoahdaBoat/gisevo/internal/geoerr"
	"github.com/NoahdaBoat/gisevo/internal/obslog"
)

const (
	osmMagicV1 = "GISEVOO1"
	osmMagicV2 = "GISEVOO2"
)

// LoadOSM parses the OSM overlay binary (ยง6.2) at path into the POI,
// feature, and relation vectors, rebuilds the relation id lookup, and
// rebuilds the four spatial indexes so the new POIs and features are
// included. LoadStreets must have already populated nodes/segments;
// LoadOSM does not rebuild the street-derived tables.
func (db *Database) LoadOSM(path string) error {
	r, err := binfmt.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	pois, features, relations, err := parseOSM(r)
	if err != nil {
		db.Clear()
		return geoerr.Wrap(err, geoerr.CodeOf(err), "load osm").WithDetail("path", path)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.pois = pois
	db.features = features
	db.relations = relations

	db.relationIDToIndex = make(map[osm.RelationID]int, len(relations))
	for i, rel := range relations {
		db.relationIDToIndex[rel.OSMID] = i
	}

	db.buildSpatialIndexesLocked()
	db.log.Event(obslog.LevelInfo, "osm overlay loaded",
		obslog.F("path", path), obslog.F("pois", len(pois)),
		obslog.F("features", len(features)), obslog.F("relations", len(relations)))
	return nil
}

func parseOSM(r *binfmt.Reader) ([]POI, []Feature, []Relation, error) {
	version, err := readVersionedMagic(r, osmMagicV1, osmMagicV2)
	if err != nil {
		return nil, nil, nil, err
	}

	poiCount, err := r.ReadU64()
	if err != nil {
		return nil, nil, nil, err
	}
	pois := make([]POI, 0, poiCount)
	for i := uint64(0); i < poiCount; i++ {
		p, err := parsePOI(r, version)
		if err != nil {
			return nil, nil, nil, err
		}
		pois = append(pois, p)
	}

	featureCount, err := r.ReadU64()
	if err != nil {
		return nil, nil, nil, err
	}
	features := make([]Feature, 0, featureCount)
	for i := uint64(0); i < featureCount; i++ {
		f, err := parseFeature(r, version)
		if err != nil {
			return nil, nil, nil, err
		}
		features = append(features, f)
	}

	var relations []Relation
	if version >= 2 {
		relationCount, err := r.ReadU64()
		if err != nil {
			return nil, nil, nil, err
		}
		relations = make([]Relation, 0, relationCount)
		for i := uint64(0); i < relationCount; i++ {
			rel, err := parseRelation(r)
			if err != nil {
				return nil, nil, nil, err
			}
			relations = append(relations, rel)
		}
	}

	return pois, features, relations, nil
}

func parsePOI(r *binfmt.Reader, version uint32) (POI, error) {
	osmID, err := r.ReadI64()
	if err != nil {
		return POI{}, err
	}
	lat, err := r.ReadF64()
	if err != nil {
		return POI{}, err
	}
	lon, err := r.ReadF64()
	if err != nil {
		return POI{}, err
	}
	category, err := r.ReadString()
	if err != nil {
		return POI{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return POI{}, err
	}
	var tags []binfmt.Tag
	if version >= 2 {
		tags, err = r.ReadTags()
		if err != nil {
			return POI{}, err
		}
	}
	return POI{OSMID: osm.NodeID(osmID), Lat: lat, Lon: lon, Category: category, Name: name, Tags: tags}, nil
}

func parseFeature(r *binfmt.Reader, version uint32) (Feature, error) {
	osmID, err := r.ReadI64()
	if err != nil {
		return Feature{}, err
	}
	featureType, err := r.ReadU8()
	if err != nil {
		return Feature{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return Feature{}, err
	}
	refs, err := r.ReadNodeRefs64()
	if err != nil {
		return Feature{}, err
	}
	// is_closed is read off the wire here but not stored; it is always
	// recomputed from NodeRefs by Feature.IsClosed.
	if _, err := r.ReadBool(); err != nil {
		return Feature{}, err
	}
	var tags []binfmt.Tag
	if version >= 2 {
		tags, err = r.ReadTags()
		if err != nil {
			return Feature{}, err
		}
	}

	nodeRefs := make([]osm.NodeID, len(refs))
	for i, ref := range refs {
		nodeRefs[i] = osm.NodeID(ref)
	}

	return Feature{OSMID: osm.WayID(osmID), Type: enum.FeatureType(featureType), Name: name, NodeRefs: nodeRefs, Tags: tags}, nil
}

func parseRelation(r *binfmt.Reader) (Relation, error) {
	osmID, err := r.ReadI64()
	if err != nil {
		return Relation{}, err
	}
	tags, err := r.ReadTags()
	if err != nil {
		return Relation{}, err
	}
	memberCount, err := r.ReadU32()
	if err != nil {
		return Relation{}, err
	}

	ids := make([]int64, memberCount)
	for i := range ids {
		ids[i], err = r.ReadI64()
		if err != nil {
			return Relation{}, err
		}
	}
	types := make([]enum.RelationMemberType, memberCount)
	for i := range types {
		v, err := r.ReadU8()
		if err != nil {
			return Relation{}, err
		}
		types[i] = enum.RelationMemberType(v)
	}
	roles := make([]string, memberCount)
	for i := range roles {
		roles[i], err = r.ReadString()
		if err != nil {
			return Relation{}, err
		}
	}

	return Relation{
		OSMID:       osm.RelationID(osmID),
		Tags:        tags,
		MemberIDs:   ids,
		MemberTypes: types,
		MemberRoles: roles,
	}, nil
}
