package fsops

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

// ErrNotFound indicates a template source file is missing from the fetched tree.
var ErrNotFound = errors.New("template file not found")

// NotFoundError reports the missing template source path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template file does not exist: %s", e.Path)
}

// Unwrap lets callers match with errors.Is(err, ErrNotFound).
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// SafeOps mutates a project tree from an extracted template tree.
type SafeOps struct {
	fs     FS
	logger *slog.Logger
}

// NewSafeOps creates a SafeOps. A nil logger discards output.
func NewSafeOps(fs FS, logger *slog.Logger) *SafeOps {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SafeOps{fs: fs, logger: logger}
}

// CopyFromTemplate copies root/templatePath over dest.
//
// An existing dest keeps its permission bits across the overwrite. A new dest
// gets the source's permission bits on a best-effort basis.
func (s *SafeOps) CopyFromTemplate(root, templatePath, dest string) error {
	if err := s.fs.ValidateRelPath(templatePath); err != nil {
		return fmt.Errorf("invalid template path: %w", err)
	}
	src := filepath.Join(root, filepath.FromSlash(templatePath))

	srcInfo, err := s.fs.Stat(src)
	if err != nil {
		exists, existsErr := s.fs.Exists(src)
		if existsErr == nil && !exists {
			return &NotFoundError{Path: src}
		}
		return fmt.Errorf("failed to stat template file: %w", err)
	}
	if srcInfo.IsDir() {
		return &NotFoundError{Path: src}
	}

	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	destInfo, err := s.fs.Stat(dest)
	if err == nil {
		mode := destInfo.Mode().Perm()
		if err := s.fs.CopyFile(src, dest, mode); err != nil {
			return fmt.Errorf("failed to overwrite %s: %w", dest, err)
		}
		if err := s.fs.Chmod(dest, mode); err != nil {
			return fmt.Errorf("failed to restore mode on %s: %w", dest, err)
		}
		return nil
	}

	if err := s.fs.CopyFile(src, dest, 0644); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if err := s.fs.Chmod(dest, srcInfo.Mode().Perm()); err != nil {
		s.logger.Debug("could not copy mode bits", "path", dest, "error", err)
	}
	return nil
}

// RemoveFile deletes path. A missing path is not an error.
func (s *SafeOps) RemoveFile(path string) error {
	exists, err := s.fs.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check if path exists: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
