package mapdb

import (
	"github.com/paulmach/osm"

	"github.com/NoahdaBoat/gisevo/internal/binfmt"
	"github.com/NoahdaBoat/gisevo/internal/enum"
	"github.com/NoahdaBoat/gisevo/internal/geoerr"
	"github.com/NoahdaBoat/gisevo/internal/obslog"
)

const (
	streetsMagicV1 = "GISEVOS1"
	streetsMagicV2 = "GISEVOS2"
)

// LoadStreets parses the streets binary (ยง6.1) at path into the node and
// street segment vectors, then builds every derived table and spatial
// index over them. On any parse error the partial load is discarded and
// the database is left cleared (fail-atomic).
func (db *Database) LoadStreets(path string) error {
	r, err := binfmt.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	nodes, segments, err := parseStreets(r)
	if err != nil {
		db.Clear()
		return geoerr.Wrap(err, geoerr.CodeOf(err), "load streets").WithDetail("path", path)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.nodes = nodes
	db.segments = segments
	db.buildIndexes()
	db.log.Event(obslog.LevelInfo, "streets loaded",
		obslog.F("path", path), obslog.F("nodes", len(nodes)), obslog.F("segments", len(segments)))
	return nil
}

func parseStreets(r *binfmt.Reader) ([]Node, []StreetSegment, error) {
	version, err := readVersionedMagic(r, streetsMagicV1, streetsMagicV2)
	if err != nil {
		return nil, nil, err
	}

	nodeCount, err := r.ReadU64()
	if err != nil {
		return nil, nil, err
	}
	segmentCount, err := r.ReadU64()
	if err != nil {
		return nil, nil, err
	}

	nodes := make([]Node, 0, nodeCount)
	for i := uint64(0); i < nodeCount; i++ {
		n, err := parseNode(r, version)
		if err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}

	segments := make([]StreetSegment, 0, segmentCount)
	for i := uint64(0); i < segmentCount; i++ {
		s, err := parseSegment(r, version)
		if err != nil {
			return nil, nil, err
		}
		segments = append(segments, s)
	}

	return nodes, segments, nil
}

func parseNode(r *binfmt.Reader, version uint32) (Node, error) {
	osmID, err := r.ReadI64()
	if err != nil {
		return Node{}, err
	}
	lat, err := r.ReadF64()
	if err != nil {
		return Node{}, err
	}
	lon, err := r.ReadF64()
	if err != nil {
		return Node{}, err
	}
	var tags []binfmt.Tag
	if version >= 2 {
		tags, err = r.ReadTags()
		if err != nil {
			return Node{}, err
		}
	}
	return Node{OSMID: osm.NodeID(osmID), Lat: lat, Lon: lon, Tags: tags}, nil
}

func parseSegment(r *binfmt.Reader, version uint32) (StreetSegment, error) {
	osmID, err := r.ReadI64()
	if err != nil {
		return StreetSegment{}, err
	}
	category, err := r.ReadU8()
	if err != nil {
		return StreetSegment{}, err
	}
	maxSpeed, err := r.ReadF32()
	if err != nil {
		return StreetSegment{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return StreetSegment{}, err
	}
	refs, err := r.ReadNodeRefs()
	if err != nil {
		return StreetSegment{}, err
	}
	var tags []binfmt.Tag
	if version >= 2 {
		tags, err = r.ReadTags()
		if err != nil {
			return StreetSegment{}, err
		}
	}

	nodeRefs := make([]osm.NodeID, len(refs))
	for i, ref := range refs {
		nodeRefs[i] = osm.NodeID(ref)
	}

	return StreetSegment{
		OSMID:       osm.WayID(osmID),
		Category:    enum.HighwayCategory(category),
		MaxSpeedKPH: maxSpeed,
		Name:        name,
		NodeRefs:    nodeRefs,
		Tags:        tags,
	}, nil
}

// readVersionedMagic reads an 8-byte magic tag matching either v1 or v2,
// then the u32 version field, and confirms the version agrees with the
// magic's suffix digit.
func readVersionedMagic(r *binfmt.Reader, v1, v2 string) (uint32, error) {
	magic, err := r.ReadBytes(len(v1))
	if err != nil {
		return 0, err
	}
	var wantVersion uint32
	switch string(magic) {
	case v1:
		wantVersion = 1
	case v2:
		wantVersion = 2
	default:
		return 0, geoerr.New(geoerr.CodeInvalidFormat, "magic mismatch").
			WithDetail("got", string(magic)).WithDetail("want", []string{v1, v2})
	}

	version, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if version != wantVersion {
		return 0, geoerr.New(geoerr.CodeVersionMismatch, "magic/version mismatch").
			WithDetail("magic_version", wantVersion).WithDetail("field_version", version)
	}
	return version, nil
}
