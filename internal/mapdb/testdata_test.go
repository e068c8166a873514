package mapdb

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeStreetsV2 hand-assembles a ยง6.1 v2 streets file from the given
// nodes and segments and writes it to dir/streets.bin, returning the path.
type testNode struct {
	osmID    int64
	lat, lon float64
}

type testSegment struct {
	osmID    int64
	category uint8
	maxSpeed float32
	name     string
	nodeRefs []int64
}

func writeStreetsV2(t *testing.T, dir string, nodes []testNode, segments []testSegment) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("GISEVOS2")
	writeU32(&buf, 2)
	writeU64(&buf, uint64(len(nodes)))
	writeU64(&buf, uint64(len(segments)))

	for _, n := range nodes {
		writeI64(&buf, n.osmID)
		writeF64(&buf, n.lat)
		writeF64(&buf, n.lon)
		writeU32(&buf, 0) // no tags
	}

	for _, s := range segments {
		writeI64(&buf, s.osmID)
		buf.WriteByte(s.category)
		writeF32(&buf, s.maxSpeed)
		writeString(&buf, s.name)
		writeU32(&buf, uint32(len(s.nodeRefs)))
		for _, ref := range s.nodeRefs {
			writeI64(&buf, ref)
		}
		writeU32(&buf, 0) // no tags
	}

	path := filepath.Join(dir, "streets.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write streets fixture: %v", err)
	}
	return path
}

func writeEmptyOSMV2(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("GISEVOO2")
	writeU32(&buf, 2)
	writeU64(&buf, 0) // pois
	writeU64(&buf, 0) // features
	writeU64(&buf, 0) // relations
	path := filepath.Join(dir, "osm.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write osm fixture: %v", err)
	}
	return path
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeI64(buf *bytes.Buffer, v int64) {
	writeU64(buf, uint64(v))
}

func writeF32(buf *bytes.Buffer, v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	buf.Write(b[:])
}

func writeF64(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}
