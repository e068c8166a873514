// Package cache implements the on-disk verified cache of a loaded map: a
// single file per map name holding a metadata header (version, bounds,
// source checksums) followed by the full entity snapshot and the four
// serialized R-trees, so a subsequent process start can skip re-parsing
// the streets and OSM binaries entirely.
package cache

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
	"github.com/NoahdaBoat/gisevo/internal/mapdb"
	"github.com/NoahdaBoat/gisevo/internal/obslog"
	"github.com/NoahdaBoat/gisevo/internal/rtree"
)

// ValidationState classifies the outcome of Validate. Absent and Valid are
// the only terminal states; the others all funnel into Load deleting the
// cache file and reporting the failure to its caller.
type ValidationState string

const (
	StateAbsent           ValidationState = "ABSENT"
	StateValid            ValidationState = "VALID"
	StateChecksumMismatch ValidationState = "CHECKSUM_MISMATCH"
	StateCorrupted        ValidationState = "CORRUPTED"
	StateVersionMismatch  ValidationState = "VERSION_MISMATCH"
)

// Config configures a Manager.
type Config struct {
	// Dir is the directory cache files live in, one per map name.
	Dir     string
	Logger  obslog.Logger
	Options Options
}

// Manager owns the verified on-disk cache for a directory of maps. It is
// safe for concurrent use; callers are expected to serialize Save/Load per
// map name themselves, the way the loader that owns a mapdb.Database would.
type Manager struct {
	dir  string
	log  obslog.Logger
	opts Options
}

// New constructs a Manager rooted at config.Dir.
func New(config Config) *Manager {
	log := config.Logger
	if log == nil {
		log = obslog.Noop{}
	}
	opts := config.Options
	if opts == (Options{}) {
		opts = WithDefaultOptions()
	}
	return &Manager{dir: config.Dir, log: log, opts: opts}
}

func (m *Manager) cachePath(mapName string) string {
	return filepath.Join(m.dir, mapName+".gisevocache")
}

func (m *Manager) backupPath(mapName string) string {
	return m.cachePath(mapName) + ".bak"
}

// Validate inspects the cache file for mapName without loading its
// contents, checking it against the current streets and OSM source files'
// checksums.
func (m *Manager) Validate(mapName, streetsPath, osmPath string) (ValidationState, error) {
	path := m.cachePath(mapName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return StateAbsent, nil
		}
		return StateCorrupted, geoerr.Wrap(err, geoerr.CodeIO, "open cache file").WithDetail("path", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return StateCorrupted, geoerr.Wrap(err, geoerr.CodeIO, "stat cache file").WithDetail("path", path)
	}
	if info.Size() < m.opts.CorruptionThresholdBytes {
		return StateCorrupted, geoerr.New(geoerr.CodeCorrupted, "cache file smaller than minimum size").
			WithDetail("path", path).WithDetail("size", info.Size())
	}

	r := bufio.NewReader(f)
	if err := checkCacheMagic(r); err != nil {
		return StateCorrupted, err
	}
	meta, err := readMetadata(r)
	if err != nil {
		return StateCorrupted, geoerr.Wrap(err, geoerr.CodeCorrupted, "read cache metadata").WithDetail("path", path)
	}
	if meta.Version != cacheVersion {
		return StateVersionMismatch, geoerr.New(geoerr.CodeVersionMismatch, "cache version mismatch").
			WithDetail("got", meta.Version).WithDetail("want", cacheVersion)
	}

	streetsChecksum, err := ComputeFileChecksum(streetsPath)
	if err != nil {
		return StateCorrupted, err
	}
	if streetsChecksum != meta.StreetsChecksum {
		return StateChecksumMismatch, geoerr.New(geoerr.CodeChecksumMismatch, "streets checksum mismatch").
			WithDetail("path", streetsPath)
	}

	osmChecksum, err := ComputeFileChecksum(osmPath)
	if err != nil {
		return StateCorrupted, err
	}
	if osmChecksum != meta.OSMChecksum {
		return StateChecksumMismatch, geoerr.New(geoerr.CodeChecksumMismatch, "osm checksum mismatch").
			WithDetail("path", osmPath)
	}

	if m.opts.EnableDeepValidation {
		if err := deepValidate(r); err != nil {
			return StateCorrupted, err
		}
	}

	return StateValid, nil
}

// deepValidate dry-parses the four R-trees that follow the entity snapshot
// without retaining them, catching truncation or structural corruption
// that a checksum match alone would miss (the checksum covers the source
// binaries, not the cache file itself).
func deepValidate(r io.Reader) error {
	if _, err := readSnapshot(r); err != nil {
		return geoerr.Wrap(err, geoerr.CodeCorrupted, "deep-validate entity snapshot")
	}
	for i := 0; i < 4; i++ {
		tree := rtree.New(rtree.WithDefaultOptions())
		if err := tree.Deserialize(r); err != nil {
			return geoerr.Wrap(err, geoerr.CodeCorrupted, "deep-validate r-tree")
		}
	}
	return nil
}

// Load validates then reads the cache file for mapName, returning the
// entity snapshot and spatial indexes it contains. On any validation or
// read failure the cache file is deleted and the error returned, so the
// caller falls back to loading from the source binaries. Only transient
// I/O failures are retried; structural problems fail immediately.
func (m *Manager) Load(mapName, streetsPath, osmPath string) (mapdb.Snapshot, mapdb.SpatialIndexes, error) {
	var snapshot mapdb.Snapshot
	var indexes mapdb.SpatialIndexes

	err := withRetry(m.opts.MaxRetryAttempts, func() error {
		state, verr := m.Validate(mapName, streetsPath, osmPath)
		if verr != nil {
			_ = m.Delete(mapName)
			return verr
		}
		if state == StateAbsent {
			return geoerr.New(geoerr.CodeNotFound, "no cache file for map").WithDetail("map", mapName)
		}

		loaded, loadedIndexes, err := m.readCacheFile(mapName)
		if err != nil {
			_ = m.Delete(mapName)
			return err
		}
		snapshot, indexes = loaded, loadedIndexes
		return nil
	})
	if err != nil {
		m.log.Event(obslog.LevelWarn, "cache load failed", obslog.F("map", mapName), obslog.F("error", err.Error()))
		return mapdb.Snapshot{}, mapdb.SpatialIndexes{}, err
	}

	m.log.Event(obslog.LevelInfo, "cache load succeeded", obslog.F("map", mapName))
	return snapshot, indexes, nil
}

func (m *Manager) readCacheFile(mapName string) (mapdb.Snapshot, mapdb.SpatialIndexes, error) {
	path := m.cachePath(mapName)
	f, err := os.Open(path)
	if err != nil {
		return mapdb.Snapshot{}, mapdb.SpatialIndexes{}, geoerr.Wrap(err, geoerr.CodeIO, "open cache file").WithDetail("path", path)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if err := checkCacheMagic(r); err != nil {
		return mapdb.Snapshot{}, mapdb.SpatialIndexes{}, err
	}
	meta, err := readMetadata(r)
	if err != nil {
		return mapdb.Snapshot{}, mapdb.SpatialIndexes{}, geoerr.Wrap(err, geoerr.CodeCorrupted, "read cache metadata")
	}

	snapshot, err := readSnapshot(r)
	if err != nil {
		return mapdb.Snapshot{}, mapdb.SpatialIndexes{}, geoerr.Wrap(err, geoerr.CodeCorrupted, "read cache entity snapshot")
	}
	snapshot.MinLat, snapshot.MaxLat = meta.MinLat, meta.MaxLat
	snapshot.MinLon, snapshot.MaxLon = meta.MinLon, meta.MaxLon
	snapshot.AvgLatRad = meta.AvgLatRad

	trees := make([]*rtree.Tree, 4)
	for i := range trees {
		tree := rtree.New(rtree.WithDefaultOptions())
		if err := tree.Deserialize(r); err != nil {
			return mapdb.Snapshot{}, mapdb.SpatialIndexes{}, geoerr.Wrap(err, geoerr.CodeCorrupted, "read cache r-tree")
		}
		trees[i] = tree
	}

	indexes := mapdb.SpatialIndexes{
		Streets:       trees[0],
		Intersections: trees[1],
		POIs:          trees[2],
		Features:      trees[3],
	}
	return snapshot, indexes, nil
}

// Save writes snapshot and indexes to the cache file for mapName,
// recomputing source checksums from streetsPath/osmPath. The write goes to
// a temp file in the same directory and is renamed into place, so a
// concurrent Load never observes a partially written cache file.
func (m *Manager) Save(mapName string, snapshot mapdb.Snapshot, indexes mapdb.SpatialIndexes, streetsPath, osmPath string) error {
	return withRetry(m.opts.MaxRetryAttempts, func() error {
		return m.saveOnce(mapName, snapshot, indexes, streetsPath, osmPath)
	})
}

func (m *Manager) saveOnce(mapName string, snapshot mapdb.Snapshot, indexes mapdb.SpatialIndexes, streetsPath, osmPath string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return geoerr.Wrap(err, geoerr.CodeIO, "create cache directory").WithDetail("dir", m.dir)
	}

	streetsChecksum, err := ComputeFileChecksum(streetsPath)
	if err != nil {
		return err
	}
	osmChecksum, err := ComputeFileChecksum(osmPath)
	if err != nil {
		return err
	}

	tmpPath := m.cachePath(mapName) + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		if os.IsPermission(err) {
			return geoerr.Wrap(err, geoerr.CodePermissionDenied, "create temp cache file").WithDetail("path", tmpPath)
		}
		return geoerr.Wrap(err, geoerr.CodeIO, "create temp cache file").WithDetail("path", tmpPath)
	}

	w := bufio.NewWriter(f)
	writeErr := func() error {
		if _, err := w.WriteString(cacheMagic); err != nil {
			return err
		}
		meta := Metadata{
			Version:           cacheVersion,
			CreationTimestamp: uint64(time.Now().Unix()),
			MinLat:            snapshot.MinLat,
			MaxLat:            snapshot.MaxLat,
			MinLon:            snapshot.MinLon,
			MaxLon:            snapshot.MaxLon,
			AvgLatRad:         snapshot.AvgLatRad,
			StreetsChecksum:   streetsChecksum,
			OSMChecksum:       osmChecksum,
		}
		if err := writeMetadata(w, meta); err != nil {
			return err
		}
		if err := writeSnapshot(w, snapshot); err != nil {
			return err
		}
		for _, tree := range []*rtree.Tree{indexes.Streets, indexes.Intersections, indexes.POIs, indexes.Features} {
			if err := tree.Serialize(w); err != nil {
				return err
			}
		}
		return w.Flush()
	}()

	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		if isDiskSpaceError(writeErr) {
			return geoerr.Wrap(writeErr, geoerr.CodeDiskSpace, "write cache file")
		}
		return geoerr.Wrap(writeErr, geoerr.CodeSerialization, "write cache file")
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return geoerr.Wrap(closeErr, geoerr.CodeIO, "close temp cache file")
	}

	if err := os.Rename(tmpPath, m.cachePath(mapName)); err != nil {
		os.Remove(tmpPath)
		return geoerr.Wrap(err, geoerr.CodeIO, "rename cache file into place")
	}

	m.log.Event(obslog.LevelInfo, "cache save succeeded", obslog.F("map", mapName))
	return nil
}

func isDiskSpaceError(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}

// Backup copies the current cache file for mapName to a .bak sibling,
// overwriting any previous backup.
func (m *Manager) Backup(mapName string) error {
	if err := copyFile(m.cachePath(mapName), m.backupPath(mapName)); err != nil {
		return pkgerrors.Wrap(err, "cache backup")
	}
	return nil
}

// Restore copies the .bak sibling back over the live cache file for
// mapName.
func (m *Manager) Restore(mapName string) error {
	if err := copyFile(m.backupPath(mapName), m.cachePath(mapName)); err != nil {
		return pkgerrors.Wrap(err, "cache restore")
	}
	return nil
}

// Repair currently just deletes the cache file so the next Load falls back
// to a from-binaries rebuild; structural repair of a partially-corrupted
// cache is not implemented.
func (m *Manager) Repair(mapName string) error {
	m.log.Event(obslog.LevelWarn, "cache repair falling back to delete", obslog.F("map", mapName))
	return m.Delete(mapName)
}

// Delete removes the cache file for mapName. Deleting an already-absent
// cache file is not an error.
func (m *Manager) Delete(mapName string) error {
	err := os.Remove(m.cachePath(mapName))
	if err != nil && !os.IsNotExist(err) {
		return geoerr.Wrap(err, geoerr.CodeIO, "delete cache file")
	}
	return nil
}

func copyFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return geoerr.Wrap(err, geoerr.CodeIO, "open copy source").WithDetail("path", srcPath)
	}
	defer src.Close()

	tmpPath := dstPath + ".tmp"
	dst, err := os.Create(tmpPath)
	if err != nil {
		return geoerr.Wrap(err, geoerr.CodeIO, "create copy destination").WithDetail("path", tmpPath)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return geoerr.Wrap(copyErr, geoerr.CodeIO, "copy file contents")
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return geoerr.Wrap(closeErr, geoerr.CodeIO, "close copy destination")
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return geoerr.Wrap(err, geoerr.CodeIO, "rename copy into place")
	}
	return nil
}
