// Package binfmt implements the bounds-checked binary cursor used to parse
// the streets and OSM map files and the on-disk cache. It supports two
// backends over the same decoding logic: a memory-mapped region for the
// common case, and a buffered in-memory fallback for platforms or files
// where mapping fails.
package binfmt

import (
	"encoding/binary"
	"math"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
)

// Reader is a forward-only, bounds-checked cursor over a byte slice backed
// either by an mmap'd region (see OpenMmap) or a fully buffered file (see
// OpenStream). Every Read* method advances the cursor and returns a typed
// geoerr error on short read.
type Reader struct {
	data []byte
	pos  int

	// backend owns the underlying memory and is released by Close.
	backend backend
}

type backend interface {
	close() error
}

// Len returns the total number of bytes in the mapped or buffered region.
func (r *Reader) Len() int {
	return len(r.data)
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Close releases the underlying backend (unmaps the file for the mmap
// backend; a no-op for the buffered backend).
func (r *Reader) Close() error {
	if r.backend == nil {
		return nil
	}
	return r.backend.close()
}

func (r *Reader) need(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return geoerr.New(geoerr.CodeInvalidFormat, "short read").
			WithDetail("pos", r.pos).
			WithDetail("want", n).
			WithDetail("available", len(r.data)-r.pos)
	}
	return nil
}

// ReadBytes returns the next n bytes without copying, advancing the cursor.
// The returned slice aliases the reader's backing storage and must not be
// retained past the reader's lifetime.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a single byte as a boolean (0 = false, anything else = true).
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64 reads a little-endian int64 (the on-disk type for OSM ids).
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (r *Reader) ReadF32() (float32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// ReadF64 reads a little-endian IEEE-754 float64.
func (r *Reader) ReadF64() (float64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadString reads a length-prefixed UTF-8 string: a u32 byte length
// followed by that many bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Tag is a single key/value pair from a tag vector.
type Tag struct {
	Key, Value string
}

// ReadTags reads a u32 tag count followed by that many (key, value) string
// pairs.
func (r *Reader) ReadTags() ([]Tag, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	tags := make([]Tag, n)
	for i := range tags {
		key, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		val, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		tags[i] = Tag{Key: key, Value: val}
	}
	return tags, nil
}

// ReadNodeRefs reads a u32 count followed by that many little-endian i64
// OSM node ids.
func (r *Reader) ReadNodeRefs() ([]int64, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	refs := make([]int64, n)
	for i := range refs {
		v, err := r.ReadI64()
		if err != nil {
			return nil, err
		}
		refs[i] = v
	}
	return refs, nil
}

// ReadNodeRefs64 is ReadNodeRefs with a u64 count prefix, used by the
// OSM feature layout (§6.2) rather than the streets layout (§6.1).
func (r *Reader) ReadNodeRefs64() ([]int64, error) {
	n, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	refs := make([]int64, n)
	for i := range refs {
		v, err := r.ReadI64()
		if err != nil {
			return nil, err
		}
		refs[i] = v
	}
	return refs, nil
}

// CheckMagic reads len(want) bytes and compares them against want, failing
// with CodeInvalidFormat on mismatch.
func (r *Reader) CheckMagic(want string) error {
	got, err := r.ReadBytes(len(want))
	if err != nil {
		return err
	}
	if string(got) != want {
		return geoerr.New(geoerr.CodeInvalidFormat, "magic mismatch").
			WithDetail("want", want).
			WithDetail("got", string(got))
	}
	return nil
}
