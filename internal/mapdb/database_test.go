package mapdb

import (
	"testing"

	"github.com/NoahdaBoat/gisevo/internal/geo"
)

// TestTinyMapS1 covers a minimal two-node, one-segment map. Both endpoints
// are referenced by only one segment, so the >=2 rule yields zero
// intersections.
func TestTinyMapS1(t *testing.T) {
	dir := t.TempDir()
	streetsPath := writeStreetsV2(t, dir,
		[]testNode{
			{osmID: 1, lat: 43.6532, lon: -79.3832},
			{osmID: 2, lat: 43.6542, lon: -79.3842},
		},
		[]testSegment{
			{osmID: 11, category: 3, maxSpeed: 50, name: "Test", nodeRefs: []int64{1, 2}},
		},
	)
	osmPath := writeEmptyOSMV2(t, dir)

	db := New(Config{})
	if err := db.LoadStreets(streetsPath); err != nil {
		t.Fatalf("LoadStreets: %v", err)
	}
	if err := db.LoadOSM(osmPath); err != nil {
		t.Fatalf("LoadOSM: %v", err)
	}

	if got := db.NodeCount(); got != 2 {
		t.Errorf("NodeCount() = %d, want 2", got)
	}
	if got := db.SegmentCount(); got != 1 {
		t.Errorf("SegmentCount() = %d, want 1", got)
	}
	if got := db.IntersectionCount(); got != 0 {
		t.Errorf("IntersectionCount() = %d, want 0", got)
	}

	results := db.QueryStreetsInBounds(geo.BoundingBox{MinX: -79.4, MinY: 43.65, MaxX: -79.3, MaxY: 43.66})
	if len(results) != 1 || results[0] != 0 {
		t.Errorf("QueryStreetsInBounds() = %v, want [0]", results)
	}
}

func TestIntersectionDerivation(t *testing.T) {
	dir := t.TempDir()
	// Three nodes; two segments share node 2 as an endpoint, so node 2
	// becomes an intersection touching both segments.
	streetsPath := writeStreetsV2(t, dir,
		[]testNode{
			{osmID: 1, lat: 0, lon: 0},
			{osmID: 2, lat: 0, lon: 1},
			{osmID: 3, lat: 0, lon: 2},
		},
		[]testSegment{
			{osmID: 100, category: 6, maxSpeed: 50, name: "A", nodeRefs: []int64{1, 2}},
			{osmID: 101, category: 6, maxSpeed: 50, name: "B", nodeRefs: []int64{2, 3}},
		},
	)
	osmPath := writeEmptyOSMV2(t, dir)

	db := New(Config{})
	if err := db.LoadStreets(streetsPath); err != nil {
		t.Fatalf("LoadStreets: %v", err)
	}
	if err := db.LoadOSM(osmPath); err != nil {
		t.Fatalf("LoadOSM: %v", err)
	}

	if got := db.IntersectionCount(); got != 1 {
		t.Fatalf("IntersectionCount() = %d, want 1", got)
	}
	nodeID, ok := db.IntersectionNodeID(0)
	if !ok || nodeID != 2 {
		t.Errorf("IntersectionNodeID(0) = %v, %v, want 2, true", nodeID, ok)
	}
	if got := db.IntersectionSegmentCount(0); got != 2 {
		t.Errorf("IntersectionSegmentCount(0) = %d, want 2", got)
	}
}

func TestGlobalBoundsContainEveryNode(t *testing.T) {
	dir := t.TempDir()
	nodes := []testNode{
		{osmID: 1, lat: 10, lon: 20},
		{osmID: 2, lat: -5, lon: 30},
		{osmID: 3, lat: 15, lon: -10},
	}
	streetsPath := writeStreetsV2(t, dir, nodes, nil)
	osmPath := writeEmptyOSMV2(t, dir)

	db := New(Config{})
	if err := db.LoadStreets(streetsPath); err != nil {
		t.Fatalf("LoadStreets: %v", err)
	}
	if err := db.LoadOSM(osmPath); err != nil {
		t.Fatalf("LoadOSM: %v", err)
	}

	minLat, maxLat, minLon, maxLon, _ := db.Bounds()
	for _, n := range nodes {
		if n.lat < minLat || n.lat > maxLat || n.lon < minLon || n.lon > maxLon {
			t.Errorf("node %+v not within bounds [%f,%f]x[%f,%f]", n, minLat, maxLat, minLon, maxLon)
		}
	}
}

func TestAccessorsOutOfRangeReturnEmptyDefault(t *testing.T) {
	db := New(Config{})
	if _, ok := db.Node(5); ok {
		t.Error("Node(5) on empty database should report not-found")
	}
	if _, ok := db.Segment(-1); ok {
		t.Error("Segment(-1) should report not-found")
	}
	if got := db.IntersectionSegmentCount(3); got != 0 {
		t.Errorf("IntersectionSegmentCount(3) = %d, want 0", got)
	}
	if got := db.StreetName(99); got != "" {
		t.Errorf("StreetName(99) = %q, want empty", got)
	}
}

func TestClearResetsToEmptyState(t *testing.T) {
	dir := t.TempDir()
	streetsPath := writeStreetsV2(t, dir, []testNode{{osmID: 1, lat: 0, lon: 0}}, nil)
	osmPath := writeEmptyOSMV2(t, dir)

	db := New(Config{})
	if err := db.LoadStreets(streetsPath); err != nil {
		t.Fatalf("LoadStreets: %v", err)
	}
	if err := db.LoadOSM(osmPath); err != nil {
		t.Fatalf("LoadOSM: %v", err)
	}
	db.Clear()

	if got := db.NodeCount(); got != 0 {
		t.Errorf("NodeCount() after Clear = %d, want 0", got)
	}
	if got := db.IntersectionCount(); got != 0 {
		t.Errorf("IntersectionCount() after Clear = %d, want 0", got)
	}
}
