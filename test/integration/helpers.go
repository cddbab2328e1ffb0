package integration

import (
	"archive/zip"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/tmplsync/internal/clock"
	"github.com/danieljhkim/tmplsync/internal/engine"
	"github.com/danieljhkim/tmplsync/internal/fsops"
	"github.com/danieljhkim/tmplsync/internal/hash"
	"github.com/danieljhkim/tmplsync/internal/manifest"
	"github.com/danieljhkim/tmplsync/internal/planner"
	"github.com/danieljhkim/tmplsync/internal/template"
)

// upstream serves zipballs of an in-memory template repository at
// /repos/org/templates/zipball/<branch>.
type upstream struct {
	mu       sync.Mutex
	branches map[string]map[string]string
	requests int
	srv      *httptest.Server
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{branches: map[string]map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/org/templates/zipball/{branch}", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.requests++
		files, ok := u.branches[r.PathValue("branch")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(zipball(t, "org-templates-"+r.PathValue("branch"), files))
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

// baseURL is the repository API root to hand to template.NewRepository.
func (u *upstream) baseURL() string {
	return u.srv.URL + "/repos/org/templates"
}

// publish replaces the tree of branch.
func (u *upstream) publish(branch string, files map[string]string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.branches[branch] = files
}

// zipball builds an archive with every file below a single wrapper directory.
func zipball(t *testing.T, wrapper string, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create(wrapper + "/")
	require.NoError(t, err)
	for _, name := range names {
		hdr := &zip.FileHeader{Name: wrapper + "/" + name, Method: zip.Deflate}
		hdr.SetMode(0644)
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// release is one upstream state of a template: key -> {commit, content}.
type release map[string][2]string

// tree renders r as template <typ>/<name> inside a repository tree, next to
// an unrelated template that must never be copied.
func (r release) tree(t *testing.T, typ, name string) map[string]string {
	t.Helper()
	files := map[string]string{
		"README.md":                   "# templates\n",
		typ + "/other/manifest.json":  "{}",
		typ + "/other/unrelated.py":   "nope\n",
		"_shared/ignored_by_tool.txt": "x\n",
	}
	m := manifest.Manifest{}
	for key, v := range r {
		sum := md5.Sum([]byte(v[1]))
		m[key] = manifest.FileMeta{
			LastCommit:   v[0],
			MD5:          hex.EncodeToString(sum[:]),
			TemplatePath: name + "/" + key,
		}
		files[typ+"/"+name+"/"+key] = v[1]
	}
	data, err := json.MarshalIndent(m, "", "  ")
	require.NoError(t, err)
	files[typ+"/"+name+"/manifest.json"] = string(data)
	return files
}

// newEngine wires the production components against u.
func newEngine(t *testing.T, u *upstream) *engine.Engine {
	t.Helper()
	fs := fsops.NewRealFS()
	repo := template.NewRepository(u.baseURL(), template.WithFS(fs), template.WithTempDir(t.TempDir()))
	pl := planner.New(fs, hash.NewMD5Hasher(), nil)
	return engine.New(repo, pl, fs, clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)), nil)
}

func readFile(t *testing.T, root, key string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	return string(data)
}

func writeFile(t *testing.T, root, key, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func exists(t *testing.T, root, key string) bool {
	t.Helper()
	ok, err := fsops.NewRealFS().Exists(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	return ok
}
