package template

import (
	"log/slog"
	"net/http"

	"github.com/danieljhkim/tmplsync/internal/fsops"
)

// Option configures a Repository.
type Option func(*Repository)

// WithHTTPClient sets the client used for archive downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Repository) {
		if client != nil {
			r.client = client
		}
	}
}

// WithToken sends token as a bearer credential. Useful against rate limits
// and for private template repositories.
func WithToken(token string) Option {
	return func(r *Repository) {
		r.token = token
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Repository) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithFS sets the filesystem used for extraction.
func WithFS(fs fsops.FS) Option {
	return func(r *Repository) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithTempDir sets where the downloaded archive is staged. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(r *Repository) {
		r.tempDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}
