package cache

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
)

const (
	cacheMagic   = "GISEVOC1"
	cacheVersion = uint32(1)
)

// Metadata is the fixed-size header written immediately after the cache
// magic: format version, creation time, map bounds, and both source-file
// checksums.
type Metadata struct {
	Version           uint32
	CreationTimestamp uint64 // seconds since epoch
	MinLat            float64
	MaxLat            float64
	MinLon            float64
	MaxLon            float64
	AvgLatRad         float64
	StreetsChecksum   string // exactly ChecksumLength hex chars
	OSMChecksum       string
}

func writeMetadata(w io.Writer, m Metadata) error {
	if err := binary.Write(w, binary.LittleEndian, m.Version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.CreationTimestamp); err != nil {
		return err
	}
	for _, v := range []float64{m.MinLat, m.MaxLat, m.MinLon, m.MaxLon, m.AvgLatRad} {
		if err := binary.Write(w, binary.LittleEndian, math.Float64bits(v)); err != nil {
			return err
		}
	}
	if err := writeLengthPrefixedString(w, m.StreetsChecksum); err != nil {
		return err
	}
	return writeLengthPrefixedString(w, m.OSMChecksum)
}

func readMetadata(r io.Reader) (Metadata, error) {
	var m Metadata
	if err := binary.Read(r, binary.LittleEndian, &m.Version); err != nil {
		return Metadata{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &m.CreationTimestamp); err != nil {
		return Metadata{}, err
	}

	vals := make([]float64, 5)
	for i := range vals {
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return Metadata{}, err
		}
		vals[i] = math.Float64frombits(bits)
	}
	m.MinLat, m.MaxLat, m.MinLon, m.MaxLon, m.AvgLatRad = vals[0], vals[1], vals[2], vals[3], vals[4]

	streets, err := readLengthPrefixedString(r)
	if err != nil {
		return Metadata{}, err
	}
	m.StreetsChecksum = streets

	osmChecksum, err := readLengthPrefixedString(r)
	if err != nil {
		return Metadata{}, err
	}
	m.OSMChecksum = osmChecksum

	return m, nil
}

func writeLengthPrefixedString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readLengthPrefixedString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func checkCacheMagic(r io.Reader) error {
	magic := make([]byte, len(cacheMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return geoerr.Wrap(err, geoerr.CodeInvalidFormat, "read cache magic")
	}
	if string(magic) != cacheMagic {
		return geoerr.New(geoerr.CodeCorrupted, "cache magic mismatch").WithDetail("got", string(magic))
	}
	return nil
}
