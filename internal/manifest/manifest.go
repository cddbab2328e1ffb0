// Package manifest loads and saves template manifests.
//
// A manifest maps a POSIX-style path relative to the project root to the
// record of the template file that produces it. Two manifests take part in
// every run: the template manifest shipped with the fetched template and the
// local manifest stored at the project root.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/danieljhkim/tmplsync/internal/fsops"
)

// DefaultFileName is the manifest file name at the template and project roots.
const DefaultFileName = "manifest.json"

// ErrFormat indicates a manifest file exists but is malformed.
var ErrFormat = errors.New("invalid manifest format")

// FormatError reports why a manifest file could not be used.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrFormat).
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// FileMeta is the record kept for one tracked file.
type FileMeta struct {
	// LastCommit is the opaque revision token of the last template change
	LastCommit string `json:"last_commit"`

	// MD5 is the lowercase hex content digest at LastCommit
	MD5 string `json:"md5"`

	// TemplatePath is the path inside the template tree that produces the file
	TemplatePath string `json:"template_path"`
}

// Manifest maps relative project paths to their FileMeta.
type Manifest map[string]FileMeta

// Keys returns the manifest keys in lexicographic order.
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the record for key and whether it is tracked.
func (m Manifest) Get(key string) (FileMeta, bool) {
	meta, ok := m[key]
	return meta, ok
}

// Load reads the manifest at path. A missing file yields an empty manifest.
func Load(fs fsops.FS, path string) (Manifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return Parse(path, data)
}

// Parse decodes and validates manifest JSON. path is only used in errors.
func Parse(path string, data []byte) (Manifest, error) {
	var top any
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if _, ok := top.(map[string]any); !ok {
		return nil, &FormatError{Path: path, Reason: "expected object at top-level"}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Path: path, Reason: err.Error()}
	}

	m := make(Manifest, len(raw))
	for key, value := range raw {
		if err := fsops.ValidateRelPath(key); err != nil {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("key %q: %v", key, err)}
		}
		var meta FileMeta
		if err := json.Unmarshal(value, &meta); err != nil {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("entry %q: %v", key, err)}
		}
		m[key] = meta
	}

	return m, nil
}

// Save writes m to path atomically. Keys are written in sorted order.
func Save(fs fsops.FS, path string, m Manifest) error {
	if m == nil {
		m = Manifest{}
	}

	// encoding/json sorts map keys, which keeps the file diff-friendly
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	data = append(data, '\n')

	if err := fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// CollectKeys returns the sorted template keys and the sorted keys present in
// local but absent from template.
func CollectKeys(template, local Manifest) (templateKeys, removedKeys []string) {
	templateKeys = template.Keys()

	removedKeys = []string{}
	for _, key := range local.Keys() {
		if _, ok := template[key]; !ok {
			removedKeys = append(removedKeys, key)
		}
	}

	return templateKeys, removedKeys
}
