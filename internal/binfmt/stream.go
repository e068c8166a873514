package binfmt

import (
	"os"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
)

// streamBackend holds a fully buffered copy of the file. Unlike the mmap
// backend there is no kernel mapping to release; Close is a no-op.
type streamBackend struct{}

func (streamBackend) close() error { return nil }

// OpenStream reads path fully into memory and returns a Reader over the
// buffer. This is the fallback path Open uses when OpenMmap fails for a
// reason other than a missing or empty file (for example a failed stat or
// mmap call), or when the caller explicitly wants a buffered read; it
// performs the same logical parse as the mmap backend since both produce
// a Reader over a plain byte slice.
func OpenStream(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, geoerr.Wrap(err, geoerr.CodeNotFound, "read map file").WithDetail("path", path)
		}
		if os.IsPermission(err) {
			return nil, geoerr.Wrap(err, geoerr.CodePermissionDenied, "read map file").WithDetail("path", path)
		}
		return nil, geoerr.Wrap(err, geoerr.CodeIO, "read map file").WithDetail("path", path)
	}
	if len(data) == 0 {
		return nil, geoerr.New(geoerr.CodeInvalidFormat, "empty map file").WithDetail("path", path)
	}
	return &Reader{data: data, backend: streamBackend{}}, nil
}

// Open tries OpenMmap first and transparently falls back to OpenStream on
// any OpenMmap failure other than CodeNotFound or CodeInvalidFormat (a
// missing or empty file). The fallback happens only here, at open time: a
// parse error after a successful open (short read, magic or version
// mismatch) fails the load and does not retry with the stream backend.
func Open(path string) (*Reader, error) {
	r, err := OpenMmap(path)
	if err == nil {
		return r, nil
	}
	switch geoerr.CodeOf(err) {
	case geoerr.CodeNotFound, geoerr.CodeInvalidFormat:
		return nil, err
	default:
		return OpenStream(path)
	}
}
