// Package hash provides file hashing functionality for content comparison.
//
// tmplsync fingerprints whole files with MD5 to match the digests recorded in
// template manifests. The digest is used purely for change detection, never
// as a security primitive. The package provides both a real implementation
// and a fake implementation for testing.
package hash

import (
	"crypto/md5" //nolint:gosec // change detection only
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ChunkSize is the read buffer size used when hashing files.
const ChunkSize = 1024 * 1024

// Hasher provides an abstraction for file hashing operations.
type Hasher interface {
	// HashFile computes the digest of the file at the given path.
	// exists is false, with a nil error, when nothing is at path.
	HashFile(path string) (digest string, exists bool, err error)
}

// MD5Hasher implements Hasher using MD5 over fixed-size chunks.
type MD5Hasher struct {
	chunkSize int
}

// NewMD5Hasher creates a new MD5Hasher.
func NewMD5Hasher() *MD5Hasher {
	return &MD5Hasher{chunkSize: ChunkSize}
}

// HashFile computes the lowercase hex MD5 of the file at the given path.
func (h *MD5Hasher) HashFile(path string) (string, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	size := h.chunkSize
	if size <= 0 {
		size = ChunkSize
	}

	hasher := md5.New() //nolint:gosec
	buf := make([]byte, size)
	if _, err := io.CopyBuffer(hasher, onlyReader{file}, buf); err != nil {
		return "", true, fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), true, nil
}

// onlyReader hides *os.File's WriterTo so io.CopyBuffer uses our buffer.
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) {
	return o.r.Read(p)
}

// FakeHasher implements Hasher with deterministic hashes for testing.
type FakeHasher struct {
	hashes map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		hashes: make(map[string]string),
	}
}

// SetHash sets the hash for a specific path (for testing).
func (h *FakeHasher) SetHash(path, hash string) {
	h.hashes[path] = hash
}

// HashFile returns the predetermined hash for the given path.
// Paths without a configured hash are reported as absent.
func (h *FakeHasher) HashFile(path string) (string, bool, error) {
	if hash, ok := h.hashes[path]; ok {
		return hash, true, nil
	}
	return "", false, nil
}
