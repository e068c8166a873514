package binfmt

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReaderPrimitives(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(1)
	binary.Write(&buf, binary.LittleEndian, uint32(42))
	binary.Write(&buf, binary.LittleEndian, uint64(99))
	binary.Write(&buf, binary.LittleEndian, int64(-7))
	binary.Write(&buf, binary.LittleEndian, math.Float32bits(1.5))
	binary.Write(&buf, binary.LittleEndian, math.Float64bits(2.5))

	path := writeTempFile(t, buf.Bytes())
	r, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer r.Close()

	if b, err := r.ReadBool(); err != nil || !b {
		t.Fatalf("ReadBool = %v, %v", b, err)
	}
	if v, err := r.ReadU32(); err != nil || v != 42 {
		t.Fatalf("ReadU32 = %v, %v", v, err)
	}
	if v, err := r.ReadU64(); err != nil || v != 99 {
		t.Fatalf("ReadU64 = %v, %v", v, err)
	}
	if v, err := r.ReadI64(); err != nil || v != -7 {
		t.Fatalf("ReadI64 = %v, %v", v, err)
	}
	if v, err := r.ReadF32(); err != nil || v != 1.5 {
		t.Fatalf("ReadF32 = %v, %v", v, err)
	}
	if v, err := r.ReadF64(); err != nil || v != 2.5 {
		t.Fatalf("ReadF64 = %v, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected exhausted reader, %d bytes remaining", r.Remaining())
	}
}

func TestReaderShortRead(t *testing.T) {
	path := writeTempFile(t, []byte{1, 2})
	r, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer r.Close()

	if _, err := r.ReadU64(); err == nil {
		t.Fatal("expected short-read error, got nil")
	} else if geoerr.CodeOf(err) != geoerr.CodeInvalidFormat {
		t.Fatalf("expected CodeInvalidFormat, got %v", geoerr.CodeOf(err))
	}
}

func TestReaderStringAndTags(t *testing.T) {
	var buf bytes.Buffer
	writeString := func(s string) {
		binary.Write(&buf, binary.LittleEndian, uint32(len(s)))
		buf.WriteString(s)
	}
	writeString("Main Street")
	binary.Write(&buf, binary.LittleEndian, uint32(2)) // tag count
	writeString("highway")
	writeString("primary")
	writeString("lanes")
	writeString("2")

	path := writeTempFile(t, buf.Bytes())
	r, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer r.Close()

	name, err := r.ReadString()
	if err != nil || name != "Main Street" {
		t.Fatalf("ReadString = %q, %v", name, err)
	}
	tags, err := r.ReadTags()
	if err != nil {
		t.Fatalf("ReadTags: %v", err)
	}
	want := []Tag{{Key: "highway", Value: "primary"}, {Key: "lanes", Value: "2"}}
	if len(tags) != len(want) || tags[0] != want[0] || tags[1] != want[1] {
		t.Fatalf("ReadTags = %+v, want %+v", tags, want)
	}
}

func TestReaderNodeRefs(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(3))
	for _, id := range []int64{10, 20, 30} {
		binary.Write(&buf, binary.LittleEndian, id)
	}

	path := writeTempFile(t, buf.Bytes())
	r, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer r.Close()

	refs, err := r.ReadNodeRefs()
	if err != nil {
		t.Fatalf("ReadNodeRefs: %v", err)
	}
	want := []int64{10, 20, 30}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("ReadNodeRefs = %v, want %v", refs, want)
		}
	}
}

func TestReaderCheckMagic(t *testing.T) {
	path := writeTempFile(t, []byte("GISEVOS1"))
	r, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer r.Close()

	if err := r.CheckMagic("GISEVOS1"); err != nil {
		t.Fatalf("CheckMagic: %v", err)
	}
}

func TestReaderCheckMagicMismatch(t *testing.T) {
	path := writeTempFile(t, []byte("GISEVOX1"))
	r, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer r.Close()

	err = r.CheckMagic("GISEVOS1")
	if err == nil || geoerr.CodeOf(err) != geoerr.CodeInvalidFormat {
		t.Fatalf("expected magic mismatch error, got %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.bin"))
	if err == nil || geoerr.CodeOf(err) != geoerr.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}
