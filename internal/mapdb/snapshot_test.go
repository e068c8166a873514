package mapdb

import "testing"

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	streetsPath := writeStreetsV2(t, dir,
		[]testNode{{osmID: 1, lat: 1, lon: 2}, {osmID: 2, lat: 3, lon: 4}},
		[]testSegment{{osmID: 10, category: 6, maxSpeed: 50, name: "Main", nodeRefs: []int64{1, 2}}},
	)
	osmPath := writeEmptyOSMV2(t, dir)

	db := New(Config{})
	if err := db.LoadStreets(streetsPath); err != nil {
		t.Fatalf("LoadStreets: %v", err)
	}
	if err := db.LoadOSM(osmPath); err != nil {
		t.Fatalf("LoadOSM: %v", err)
	}

	snapshot := db.Snapshot()
	indexes := db.SpatialIndexes()

	restored := New(Config{})
	restored.RestoreFromCache(snapshot, indexes)

	if restored.NodeCount() != db.NodeCount() || restored.SegmentCount() != db.SegmentCount() {
		t.Fatalf("restored counts = (%d,%d), want (%d,%d)",
			restored.NodeCount(), restored.SegmentCount(), db.NodeCount(), db.SegmentCount())
	}
	idx, ok := restored.NodeIndexByOSMID(2)
	if !ok || idx != 1 {
		t.Errorf("NodeIndexByOSMID(2) = %d, %v, want 1, true", idx, ok)
	}
}
