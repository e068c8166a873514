// Package geoerr defines the error taxonomy shared by the binary loader,
// the R-tree, and the on-disk cache manager.
//
// Every exported error is a *Error carrying a stable Code that callers can
// switch on without parsing messages, plus an optional cause chain reachable
// through Unwrap.
package geoerr

// Code classifies a failure into one of the categories the loader and cache
// layers need to handle differently.
type Code string

const (
	// CodeNotFound indicates a requested entity, file, or cache does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInvalidFormat indicates a binary file's header, magic, or layout
	// does not match what the reader expects.
	CodeInvalidFormat Code = "INVALID_FORMAT"

	// CodeChecksumMismatch indicates a source file checksum recorded in a
	// cache file does not match the checksum recomputed from that source
	// file.
	CodeChecksumMismatch Code = "CHECKSUM_MISMATCH"

	// CodeIO indicates a failure in the underlying filesystem or mmap layer
	// not otherwise classified (a failed stat, mmap, read, close, rename, or
	// subprocess run). Short reads, denied permissions, and a full disk
	// have their own codes.
	CodeIO Code = "IO"

	// CodeOutOfRange indicates an index or offset fell outside a vector's
	// bounds while decoding a binary file.
	CodeOutOfRange Code = "OUT_OF_RANGE"

	// CodeConflict indicates a derived table encountered a duplicate key it
	// cannot resolve silently.
	CodeConflict Code = "CONFLICT"

	// CodeVersionMismatch indicates a cache file's version field does not
	// match the version this build knows how to read.
	CodeVersionMismatch Code = "VERSION_MISMATCH"

	// CodeCorrupted indicates cache content failed structural validation
	// (bad depth, unreasonable counts, non-finite bounds) independent of
	// the checksum.
	CodeCorrupted Code = "CORRUPTED"

	// CodePermissionDenied indicates the process lacks rights to read or
	// write a path it needs.
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// CodeDiskSpace indicates a write failed because the filesystem is full.
	CodeDiskSpace Code = "DISK_SPACE"

	// CodeSerialization indicates the in-memory database or R-tree could
	// not be encoded to its on-disk form.
	CodeSerialization Code = "SERIALIZATION"

	// CodeDeserialization indicates on-disk bytes could not be decoded back
	// into the in-memory database or R-tree.
	CodeDeserialization Code = "DESERIALIZATION"
)
