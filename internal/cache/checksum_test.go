package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeFileChecksumDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(path, []byte("hello, gisevo"), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := ComputeFileChecksum(path)
	if err != nil {
		t.Fatalf("ComputeFileChecksum: %v", err)
	}
	b, err := ComputeFileChecksum(path)
	if err != nil {
		t.Fatalf("ComputeFileChecksum: %v", err)
	}
	if a != b {
		t.Errorf("checksum not deterministic: %q != %q", a, b)
	}
	if len(a) != ChecksumLength {
		t.Errorf("checksum length = %d, want %d", len(a), ChecksumLength)
	}
}

func TestComputeFileChecksumDiffersOnContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")

	os.WriteFile(path, []byte("version one"), 0o644)
	first, err := ComputeFileChecksum(path)
	if err != nil {
		t.Fatal(err)
	}

	os.WriteFile(path, []byte("version two"), 0o644)
	second, err := ComputeFileChecksum(path)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Errorf("checksum did not change after content change")
	}
}

func TestComputeFileChecksumMissingFile(t *testing.T) {
	_, err := ComputeFileChecksum(filepath.Join(t.TempDir(), "missing.bin"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
