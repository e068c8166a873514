package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"

	"github.com/NoahdaBoat/gisevo/internal/geo"
	"github.com/NoahdaBoat/gisevo/internal/geoerr"
	"github.com/NoahdaBoat/gisevo/internal/mapdb"
	"github.com/NoahdaBoat/gisevo/internal/rtree"
)

func testSources(t *testing.T, dir string) (streetsPath, osmPath string) {
	t.Helper()
	streetsPath = filepath.Join(dir, "streets.bin")
	osmPath = filepath.Join(dir, "osm.bin")
	if err := os.WriteFile(streetsPath, []byte("streets-source-bytes-v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(osmPath, []byte("osm-source-bytes-v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	return streetsPath, osmPath
}

func testSnapshotAndIndexes() (mapdb.Snapshot, mapdb.SpatialIndexes) {
	snapshot := mapdb.Snapshot{
		Nodes: []mapdb.Node{
			{OSMID: osm.NodeID(1), Lat: 43.5, Lon: -80.5},
			{OSMID: osm.NodeID(2), Lat: 43.6, Lon: -80.4},
		},
		MinLat: 43.5, MaxLat: 43.6, MinLon: -80.5, MaxLon: -80.4, AvgLatRad: 0.76,
	}

	streets := rtree.New(rtree.WithDefaultOptions())
	streets.Insert(0, geo.BoundingBox{MinX: -80.5, MinY: 43.5, MaxX: -80.4, MaxY: 43.6})

	indexes := mapdb.SpatialIndexes{
		Streets:       streets,
		Intersections: rtree.New(rtree.WithDefaultOptions()),
		POIs:          rtree.New(rtree.WithDefaultOptions()),
		Features:      rtree.New(rtree.WithDefaultOptions()),
	}
	return snapshot, indexes
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	return New(Config{
		Dir: t.TempDir(),
		Options: NewOptions(WithCorruptionThresholdBytes(1)),
	})
}

func TestManagerValidateAbsent(t *testing.T) {
	m := testManager(t)
	streetsPath, osmPath := testSources(t, t.TempDir())

	state, err := m.Validate("city", streetsPath, osmPath)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if state != StateAbsent {
		t.Errorf("state = %v, want StateAbsent", state)
	}
}

func TestManagerSaveLoadRoundTrip(t *testing.T) {
	m := testManager(t)
	srcDir := t.TempDir()
	streetsPath, osmPath := testSources(t, srcDir)

	snapshot, indexes := testSnapshotAndIndexes()
	if err := m.Save("city", snapshot, indexes, streetsPath, osmPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	state, err := m.Validate("city", streetsPath, osmPath)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if state != StateValid {
		t.Fatalf("state = %v, want StateValid", state)
	}

	restored, restoredIndexes, err := m.Load("city", streetsPath, osmPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(restored.Nodes) != len(snapshot.Nodes) {
		t.Errorf("restored node count = %d, want %d", len(restored.Nodes), len(snapshot.Nodes))
	}
	if restored.Nodes[1].OSMID != snapshot.Nodes[1].OSMID {
		t.Errorf("restored node 1 osm id = %d, want %d", restored.Nodes[1].OSMID, snapshot.Nodes[1].OSMID)
	}
	if restoredIndexes.Streets.Size() != 1 {
		t.Errorf("restored streets r-tree size = %d, want 1", restoredIndexes.Streets.Size())
	}
}

func TestManagerLoadDetectsChecksumMismatchAfterSourceChange(t *testing.T) {
	m := testManager(t)
	srcDir := t.TempDir()
	streetsPath, osmPath := testSources(t, srcDir)

	snapshot, indexes := testSnapshotAndIndexes()
	if err := m.Save("city", snapshot, indexes, streetsPath, osmPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := os.WriteFile(streetsPath, []byte("streets-source-bytes-v2-changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	state, err := m.Validate("city", streetsPath, osmPath)
	if state != StateChecksumMismatch {
		t.Errorf("state = %v, want StateChecksumMismatch", state)
	}
	if geoerr.CodeOf(err) != geoerr.CodeChecksumMismatch {
		t.Errorf("error code = %v, want CodeChecksumMismatch", geoerr.CodeOf(err))
	}

	if _, _, err := m.Load("city", streetsPath, osmPath); err == nil {
		t.Fatal("expected Load to fail after checksum mismatch")
	}
	if _, statErr := os.Stat(m.cachePath("city")); !os.IsNotExist(statErr) {
		t.Error("expected cache file to be deleted after failed load")
	}
}

func TestManagerLoadDetectsCorruptionByteFlip(t *testing.T) {
	m := testManager(t)
	srcDir := t.TempDir()
	streetsPath, osmPath := testSources(t, srcDir)

	snapshot, indexes := testSnapshotAndIndexes()
	if err := m.Save("city", snapshot, indexes, streetsPath, osmPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := m.cachePath("city")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte inside the magic so checkCacheMagic fails deterministically.
	data[0] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	state, err := m.Validate("city", streetsPath, osmPath)
	if state != StateCorrupted {
		t.Errorf("state = %v, want StateCorrupted", state)
	}
	if err == nil {
		t.Fatal("expected error for corrupted cache")
	}

	if _, _, err := m.Load("city", streetsPath, osmPath); err == nil {
		t.Fatal("expected Load to fail for corrupted cache")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("expected cache file to be deleted after failed load")
	}
}

func TestManagerBackupRestore(t *testing.T) {
	m := testManager(t)
	srcDir := t.TempDir()
	streetsPath, osmPath := testSources(t, srcDir)

	snapshot, indexes := testSnapshotAndIndexes()
	if err := m.Save("city", snapshot, indexes, streetsPath, osmPath); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := m.Backup("city"); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	if err := m.Delete("city"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := m.Load("city", streetsPath, osmPath); err == nil {
		t.Fatal("expected Load to fail after delete")
	}

	if err := m.Restore("city"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, _, err := m.Load("city", streetsPath, osmPath); err != nil {
		t.Fatalf("Load after restore: %v", err)
	}
}

func TestManagerDeleteAbsentIsNotError(t *testing.T) {
	m := testManager(t)
	if err := m.Delete("nonexistent"); err != nil {
		t.Errorf("Delete on absent cache returned error: %v", err)
	}
}
