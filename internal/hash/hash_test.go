package hash

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMD5Hasher_HashFile(t *testing.T) {
	tmpDir := t.TempDir()
	hasher := NewMD5Hasher()

	t.Run("known digest", func(t *testing.T) {
		file := filepath.Join(tmpDir, "hello.txt")
		require.NoError(t, os.WriteFile(file, []byte("hello world"), 0644))

		digest, exists, err := hasher.HashFile(file)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", digest)
	})

	t.Run("empty file", func(t *testing.T) {
		file := filepath.Join(tmpDir, "empty.txt")
		require.NoError(t, os.WriteFile(file, nil, 0644))

		digest, exists, err := hasher.HashFile(file)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", digest)
	})

	t.Run("missing file is absent, not an error", func(t *testing.T) {
		digest, exists, err := hasher.HashFile(filepath.Join(tmpDir, "nope.txt"))
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Empty(t, digest)
	})

	t.Run("chunk size does not change digest", func(t *testing.T) {
		file := filepath.Join(tmpDir, "big.bin")
		content := bytes.Repeat([]byte("0123456789abcdef"), 4096)
		require.NoError(t, os.WriteFile(file, content, 0644))

		want, _, err := hasher.HashFile(file)
		require.NoError(t, err)

		small := &MD5Hasher{chunkSize: 7}
		got, exists, err := small.HashFile(file)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, want, got)
	})

	t.Run("different content differs", func(t *testing.T) {
		a := filepath.Join(tmpDir, "a.txt")
		b := filepath.Join(tmpDir, "b.txt")
		require.NoError(t, os.WriteFile(a, []byte("content A"), 0644))
		require.NoError(t, os.WriteFile(b, []byte("content B"), 0644))

		ha, _, err := hasher.HashFile(a)
		require.NoError(t, err)
		hb, _, err := hasher.HashFile(b)
		require.NoError(t, err)
		assert.NotEqual(t, ha, hb)
	})
}

func TestFakeHasher(t *testing.T) {
	hasher := NewFakeHasher()

	_, exists, err := hasher.HashFile("/unknown")
	require.NoError(t, err)
	assert.False(t, exists)

	hasher.SetHash("/project/core/a.py", "H9")
	digest, exists, err := hasher.HashFile("/project/core/a.py")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "H9", digest)
}
