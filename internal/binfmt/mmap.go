package binfmt

import (
	"os"
	"syscall"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
)

// mmapBackend owns a memory-mapped region and the file descriptor it came
// from, mirroring the RAII MappedFile the loader it's grounded on uses to
// guarantee munmap/close run together.
type mmapBackend struct {
	file *os.File
	data []byte
}

func (m *mmapBackend) close() error {
	var err error
	if m.data != nil {
		err = syscall.Munmap(m.data)
		m.data = nil
	}
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// OpenMmap memory-maps path read-only and returns a Reader positioned at
// offset 0. Callers must call Close when done with the reader.
func OpenMmap(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, geoerr.Wrap(err, geoerr.CodeNotFound, "open map file").WithDetail("path", path)
		}
		if os.IsPermission(err) {
			return nil, geoerr.Wrap(err, geoerr.CodePermissionDenied, "open map file").WithDetail("path", path)
		}
		return nil, geoerr.Wrap(err, geoerr.CodeIO, "open map file").WithDetail("path", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, geoerr.Wrap(err, geoerr.CodeIO, "stat map file").WithDetail("path", path)
	}
	size := info.Size()
	if size == 0 {
		f.Close()
		return nil, geoerr.New(geoerr.CodeInvalidFormat, "empty map file").WithDetail("path", path)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_PRIVATE)
	if err != nil {
		f.Close()
		return nil, geoerr.Wrap(err, geoerr.CodeIO, "mmap map file").WithDetail("path", path)
	}

	return &Reader{
		data:    data,
		backend: &mmapBackend{file: f, data: data},
	}, nil
}
