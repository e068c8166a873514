package cache

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
)

// ChecksumLength is the fixed length of a rendered checksum string.
const ChecksumLength = 64

// checksumReadBufferSize mirrors the reference implementation's 4096 byte
// chunking; the running sum is order-sensitive so the chunk size itself
// doesn't affect the result, only I/O efficiency.
const checksumReadBufferSize = 4096

// ComputeFileChecksum renders a 64-character hex checksum over the
// entire contents of path using two interleaved 64-bit running
// accumulators (low += byte; high += low), the same construction byte
// for byte regardless of implementation language so a cache written by
// one producer validates under any conforming consumer.
func ComputeFileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", geoerr.Wrap(err, geoerr.CodeNotFound, "checksum source file").WithDetail("path", path)
		}
		return "", geoerr.Wrap(err, geoerr.CodeIO, "open file for checksum").WithDetail("path", path)
	}
	defer f.Close()

	var low, high uint64
	buf := make([]byte, checksumReadBufferSize)
	for {
		n, err := f.Read(buf)
		for i := 0; i < n; i++ {
			low += uint64(buf[i])
			high += low
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", geoerr.Wrap(err, geoerr.CodeIO, "read file for checksum").WithDetail("path", path)
		}
	}

	return renderChecksum(high, low), nil
}

// renderChecksum formats the two accumulators as 16-hex-digit fields
// (masked to 48 bits each, matching the 0xFFFFFFFFFFFF mask in the
// original construction) concatenated to 32 characters, then pads with
// trailing zeros to the full 64-character width.
func renderChecksum(high, low uint64) string {
	const mask = 0xFFFFFFFFFFFF
	hex := fmt.Sprintf("%016x%016x", high&mask, low&mask)
	switch {
	case len(hex) < ChecksumLength:
		hex += strings.Repeat("0", ChecksumLength-len(hex))
	case len(hex) > ChecksumLength:
		hex = hex[:ChecksumLength]
	}
	return hex
}
