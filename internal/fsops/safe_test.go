package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	// WriteFile is subject to umask; force the exact bits.
	require.NoError(t, os.Chmod(path, mode))
}

func modeOf(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Mode().Perm()
}

func TestSafeOps_CopyFromTemplate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	ops := NewSafeOps(NewRealFS(), nil)

	t.Run("missing source is a NotFoundError", func(t *testing.T) {
		root := t.TempDir()
		dest := filepath.Join(t.TempDir(), "app.py")

		err := ops.CopyFromTemplate(root, "basic/app.py", dest)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, filepath.Join(root, "basic", "app.py"), nf.Path)

		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("new file gets source mode and parent dirs", func(t *testing.T) {
		root := t.TempDir()
		project := t.TempDir()
		writeFile(t, filepath.Join(root, "basic", "run.sh"), "#!/bin/sh\necho hi\n", 0755)

		dest := filepath.Join(project, "scripts", "deep", "run.sh")
		require.NoError(t, ops.CopyFromTemplate(root, "basic/run.sh", dest))

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "#!/bin/sh\necho hi\n", string(data))
		assert.Equal(t, os.FileMode(0755), modeOf(t, dest))
	})

	t.Run("existing file keeps local mode", func(t *testing.T) {
		root := t.TempDir()
		project := t.TempDir()
		writeFile(t, filepath.Join(root, "basic", "tool.sh"), "new body", 0644)

		dest := filepath.Join(project, "tool.sh")
		writeFile(t, dest, "old body", 0750)

		require.NoError(t, ops.CopyFromTemplate(root, "basic/tool.sh", dest))

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "new body", string(data))
		assert.Equal(t, os.FileMode(0750), modeOf(t, dest))
	})

	t.Run("rejects traversal in template path", func(t *testing.T) {
		err := ops.CopyFromTemplate(t.TempDir(), "../outside.txt", filepath.Join(t.TempDir(), "x"))
		assert.Error(t, err)
	})
}

func TestSafeOps_RemoveFile(t *testing.T) {
	ops := NewSafeOps(NewRealFS(), nil)
	dir := t.TempDir()

	t.Run("missing file is a no-op", func(t *testing.T) {
		assert.NoError(t, ops.RemoveFile(filepath.Join(dir, "missing.txt")))
	})

	t.Run("existing file is deleted", func(t *testing.T) {
		path := filepath.Join(dir, "gone.txt")
		writeFile(t, path, "x", 0644)

		require.NoError(t, ops.RemoveFile(path))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}
