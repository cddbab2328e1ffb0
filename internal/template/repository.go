// Package template fetches and unpacks the upstream template repository.
//
// Templates are downloaded as a zipball of a branch head. Code-hosting zip
// exports wrap the tree in one synthetic top-level directory
// (e.g. "org-repo-abc1234/"); Extract removes that wrapper so the template
// tree lands directly in the destination.
package template

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/danieljhkim/tmplsync/internal/fsops"
)

// DefaultBaseURL is the GitHub API root of the App template repository.
const DefaultBaseURL = "https://api.github.com/repos/ThreatConnect-Inc/tcex-app-templates"

// DefaultBranch is the template branch used when none is given.
const DefaultBranch = "v2"

const defaultUserAgent = "tmplsync"

// Repository downloads template archives from a code host.
type Repository struct {
	baseURL   string
	client    *http.Client
	fs        fsops.FS
	token     string
	userAgent string
	tempDir   string
	logger    *slog.Logger
}

// NewRepository creates a Repository rooted at baseURL.
func NewRepository(baseURL string, opts ...Option) *Repository {
	r := &Repository{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 5 * time.Minute},
		fs:        fsops.NewRealFS(),
		userAgent: defaultUserAgent,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// URL returns the zipball URL for branch.
func (r *Repository) URL(branch string) string {
	return fmt.Sprintf("%s/zipball/%s", r.baseURL, url.PathEscape(branch))
}

// Download fetches the zipball of branch and extracts it into dest.
// Nothing is written to dest unless the whole archive was received.
func (r *Repository) Download(ctx context.Context, branch, dest string) error {
	archiveURL := r.URL(branch)
	logger := r.logger.With("url", archiveURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return &FetchError{URL: archiveURL, Err: err}
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	logger.Info("downloading template archive")
	resp, err := r.client.Do(req)
	if err != nil {
		return &FetchError{URL: archiveURL, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{URL: archiveURL, StatusCode: resp.StatusCode}
	}

	archive, err := os.CreateTemp(r.tempDir, "tmplsync-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	archivePath := archive.Name()
	defer func() {
		_ = archive.Close()
		_ = os.Remove(archivePath)
	}()

	n, err := io.Copy(archive, resp.Body)
	if err != nil {
		return &FetchError{URL: archiveURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to close archive file: %w", err)
	}
	logger.Debug("archive downloaded", "bytes", n)

	if err := checkZip(archivePath); err != nil {
		return &FetchError{URL: archiveURL, Err: err}
	}

	return r.Extract(archivePath, dest)
}

// checkZip rejects bodies that are not zip archives, such as HTML error pages
// served with a 200 status.
func checkZip(path string) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to detect archive type: %w", err)
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return nil
		}
	}
	return fmt.Errorf("response is %s, not a zip archive", mt.String())
}

// Extract unpacks the zip at archivePath into dest and lifts the contents of
// the wrapper directory named by the first entry up one level. Existing
// entries in dest with the same name are replaced.
func (r *Repository) Extract(archivePath, dest string) (err error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	if len(zr.File) == 0 {
		return nil
	}

	wrapper := strings.SplitN(zr.File[0].Name, "/", 2)[0]
	if err := r.fs.ValidateIdentifier(wrapper); err != nil {
		return fmt.Errorf("invalid archive layout: %w", err)
	}

	if err := r.fs.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	wrapperDir := filepath.Join(dest, wrapper)
	staging := filepath.Join(dest, "."+wrapper+".unwrap")
	defer func() {
		if err != nil {
			_ = r.fs.RemoveAll(wrapperDir)
		}
		_ = r.fs.RemoveAll(staging)
	}()

	for _, f := range zr.File {
		if err := r.extractEntry(f, dest); err != nil {
			return err
		}
	}

	info, statErr := r.fs.Lstat(wrapperDir)
	if statErr != nil || !info.IsDir() {
		// first entry was a top-level file; nothing to unwrap
		return nil
	}

	// Move the wrapper aside first so a child sharing its name cannot clash.
	if err := r.fs.Rename(wrapperDir, staging); err != nil {
		return fmt.Errorf("failed to stage wrapper directory: %w", err)
	}

	children, err := r.fs.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("failed to read wrapper directory: %w", err)
	}
	for _, child := range children {
		target := filepath.Join(dest, child.Name())
		if err := r.fs.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to replace %s: %w", target, err)
		}
		if err := r.fs.Rename(filepath.Join(staging, child.Name()), target); err != nil {
			return fmt.Errorf("failed to move %s: %w", child.Name(), err)
		}
	}

	r.logger.Debug("archive extracted", "wrapper", wrapper, "entries", len(zr.File))
	return nil
}

// extractEntry writes one archive member below dest.
func (r *Repository) extractEntry(f *zip.File, dest string) error {
	if err := r.fs.ValidateRelPath(strings.TrimSuffix(f.Name, "/")); err != nil {
		return fmt.Errorf("unsafe archive entry %q: %w", f.Name, err)
	}
	target := filepath.Join(dest, filepath.FromSlash(f.Name))

	mode := f.Mode()
	if mode.IsDir() {
		return r.fs.MkdirAll(target, 0755)
	}
	if mode&os.ModeSymlink != 0 {
		r.logger.Debug("skipping symlink in archive", "entry", f.Name)
		return nil
	}

	if err := r.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return out.Close()
}
