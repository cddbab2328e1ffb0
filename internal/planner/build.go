package planner

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/tmplsync/internal/fsops"
	"github.com/danieljhkim/tmplsync/internal/hash"
	"github.com/danieljhkim/tmplsync/internal/manifest"
)

// ProtectedPrefixes are framework-owned subtrees. Upstream changes below them
// are applied without prompting.
var ProtectedPrefixes = []string{"core/", "ui/"}

// Planner builds and applies update plans.
type Planner struct {
	fs      fsops.FS
	hasher  hash.Hasher
	safeOps *fsops.SafeOps
	logger  *slog.Logger
}

// New creates a Planner. A nil logger discards output.
func New(fs fsops.FS, hasher hash.Hasher, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Planner{
		fs:      fs,
		hasher:  hasher,
		safeOps: fsops.NewSafeOps(fs, logger),
		logger:  logger,
	}
}

// Build classifies every file of the template manifest in templateDir and
// every file of the local manifest in projectDir. With force set, every
// template file is scheduled for overwrite.
func (p *Planner) Build(templateDir, projectDir, manifestName string, force bool) (*Plan, error) {
	templateManifest, err := manifest.Load(p.fs, filepath.Join(templateDir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to load template manifest: %w", err)
	}
	localManifest, err := manifest.Load(p.fs, filepath.Join(projectDir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to load local manifest: %w", err)
	}

	plan := NewPlan()
	plan.Template = templateManifest
	plan.Local = localManifest

	templateKeys, removedKeys := manifest.CollectKeys(templateManifest, localManifest)

	for _, key := range templateKeys {
		meta := templateManifest[key]
		entry := Entry{Key: key, TemplatePath: meta.TemplatePath}

		if force {
			plan.AutoUpdate = append(plan.AutoUpdate, entry)
			continue
		}

		localPath := filepath.Join(projectDir, filepath.FromSlash(key))

		local, tracked := localManifest.Get(key)
		if !tracked {
			plan.TemplateNew = append(plan.TemplateNew, entry)
			exists, err := p.fs.Exists(localPath)
			if err != nil {
				return nil, fmt.Errorf("failed to check %s: %w", key, err)
			}
			if exists {
				plan.PromptUser = append(plan.PromptUser, entry)
			} else {
				plan.AutoUpdate = append(plan.AutoUpdate, entry)
			}
			continue
		}

		if local.LastCommit == meta.LastCommit {
			plan.Skip = append(plan.Skip, entry)
			continue
		}

		digest, exists, err := p.hasher.HashFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", key, err)
		}
		switch {
		case !exists || digest == meta.MD5:
			plan.Skip = append(plan.Skip, entry)
		case isProtected(key):
			plan.AutoUpdate = append(plan.AutoUpdate, entry)
		default:
			plan.PromptUser = append(plan.PromptUser, entry)
		}
	}

	for _, key := range removedKeys {
		local := localManifest[key]
		entry := Entry{Key: key, TemplatePath: local.TemplatePath}
		plan.TemplateRemoved = append(plan.TemplateRemoved, entry)

		digest, exists, err := p.hasher.HashFile(filepath.Join(projectDir, filepath.FromSlash(key)))
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", key, err)
		}
		if !exists || digest == local.MD5 {
			plan.AutoUpdate = append(plan.AutoUpdate, entry)
		} else {
			plan.PromptUser = append(plan.PromptUser, entry)
		}
	}

	summary := plan.Summary()
	p.logger.Debug("plan built",
		"skip", summary.Skip,
		"auto_update", summary.AutoUpdate,
		"prompt_user", summary.PromptUser,
		"template_new", summary.TemplateNew,
		"template_removed", summary.TemplateRemoved,
	)
	return plan, nil
}

func isProtected(key string) bool {
	for _, prefix := range ProtectedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
