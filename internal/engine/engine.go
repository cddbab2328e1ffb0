// Package engine provides the core logic for tmplsync operations.
//
// The engine is the orchestration layer between CLI commands and the lower
// level packages. A run downloads a fresh copy of the template repository into
// a private temporary directory, builds an update plan against the project,
// applies it and records the new manifest in the project.
//
// Key components:
//   - Engine: main orchestrator called by the CLI
//   - Init: first install of a template, overwriting everything
//   - Update: incremental sync that asks before losing local edits
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danieljhkim/tmplsync/internal/clock"
	"github.com/danieljhkim/tmplsync/internal/fsops"
	"github.com/danieljhkim/tmplsync/internal/manifest"
	"github.com/danieljhkim/tmplsync/internal/planner"
)

// TemplateSource fetches the template repository tree into dest.
type TemplateSource interface {
	Download(ctx context.Context, branch, dest string) error
}

// Engine orchestrates tmplsync operations.
// It is the main API surface called by the CLI.
type Engine struct {
	repo    TemplateSource
	planner *planner.Planner
	fs      fsops.FS
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new Engine with the given dependencies. A nil logger discards
// output.
func New(
	repo TemplateSource,
	pl *planner.Planner,
	fs fsops.FS,
	clk clock.Clock,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		repo:    repo,
		planner: pl,
		fs:      fs,
		clock:   clk,
		logger:  logger,
	}
}

// Init installs a template into req.Dest, overwriting any file the template
// provides. Dest must be empty or missing unless req.AllowNonEmpty is set.
func (e *Engine) Init(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if !req.AllowNonEmpty {
		entries, err := e.fs.ReadDir(req.Dest)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", req.Dest, err)
		}
		if len(entries) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrDirNotEmpty, req.Dest)
		}
	}

	r := *req
	r.Force = true
	return e.Run(ctx, &r)
}

// Update syncs req.Dest with the latest template, prompting through
// req.Confirmer before overwriting or removing locally edited files.
func (e *Engine) Update(ctx context.Context, req *RunRequest) (*RunResult, error) {
	r := *req
	r.Force = false
	return e.Run(ctx, &r)
}

// Run downloads the template, then builds and (unless DryRun) applies the
// update plan. The downloaded tree is removed before Run returns.
//
// When apply fails partway, the returned RunResult still reports the files
// that were changed and the project manifest is left as it was.
func (e *Engine) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if err := e.validateRequest(req); err != nil {
		return nil, err
	}
	manifestName := req.ManifestName
	if manifestName == "" {
		manifestName = manifest.DefaultFileName
	}

	start := e.clock.Now()
	logger := e.logger.With("template", req.TemplateType+"/"+req.TemplateName, "branch", req.Branch)

	tmp, err := os.MkdirTemp("", "tmplsync-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if rmErr := e.fs.RemoveAll(tmp); rmErr != nil {
			logger.Warn("failed to remove temp directory", "path", tmp, "error", rmErr)
		}
	}()

	if err := e.repo.Download(ctx, req.Branch, tmp); err != nil {
		return nil, fmt.Errorf("failed to download template: %w", err)
	}

	// Template paths in the manifest are relative to the type directory.
	templateRoot := filepath.Join(tmp, req.TemplateType)
	templateDir := filepath.Join(templateRoot, req.TemplateName)

	exists, err := e.fs.Exists(filepath.Join(templateDir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to check template manifest: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s/%s on branch %s", ErrTemplateNotFound, req.TemplateType, req.TemplateName, req.Branch)
	}

	plan, err := e.planner.Build(templateDir, req.Dest, manifestName, req.Force)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan: %w", err)
	}

	result := &RunResult{
		Plan:      plan,
		Summary:   plan.Summary(),
		DryRun:    req.DryRun,
		StartedAt: start,
	}
	logger.Info("plan built",
		"auto_update", result.Summary.AutoUpdate,
		"prompt_user", result.Summary.PromptUser,
		"template_new", result.Summary.TemplateNew,
		"template_removed", result.Summary.TemplateRemoved,
	)

	if req.DryRun {
		result.Duration = clock.Since(e.clock, start)
		return result, nil
	}

	applied, err := e.planner.Apply(plan, templateRoot, req.Dest, req.Force, req.Confirmer)
	result.Applied = applied
	if err != nil {
		result.Duration = clock.Since(e.clock, start)
		return result, fmt.Errorf("failed to apply template update: %w", err)
	}

	next := nextManifest(plan, applied.Declined)
	if err := manifest.Save(e.fs, filepath.Join(req.Dest, manifestName), next); err != nil {
		result.Duration = clock.Since(e.clock, start)
		return result, fmt.Errorf("failed to save project manifest: %w", err)
	}
	result.Persisted = true
	result.Duration = clock.Since(e.clock, start)

	logger.Info("template applied",
		"copied", len(applied.Copied),
		"removed", len(applied.Removed),
		"declined", len(applied.Declined),
		"duration", result.Duration,
	)
	return result, nil
}

// nextManifest returns the manifest to record after a successful apply: the
// template manifest, except that declined keys keep their previous record
// (or stay untracked) so they are offered again on the next update.
func nextManifest(plan *planner.Plan, declined []string) manifest.Manifest {
	skipped := make(map[string]bool, len(declined))
	for _, key := range declined {
		skipped[key] = true
	}

	next := manifest.Manifest{}
	for key, meta := range plan.Template {
		if !skipped[key] {
			next[key] = meta
			continue
		}
		if old, ok := plan.Local[key]; ok {
			next[key] = old
		}
	}
	for key, meta := range plan.Local {
		if _, inTemplate := plan.Template[key]; !inTemplate && skipped[key] {
			next[key] = meta
		}
	}
	return next
}

func (e *Engine) validateRequest(req *RunRequest) error {
	if req.Dest == "" {
		return fmt.Errorf("%w: destination directory is required", ErrValidation)
	}
	if req.Branch == "" {
		return fmt.Errorf("%w: branch is required", ErrValidation)
	}
	if err := e.fs.ValidateIdentifier(req.TemplateType); err != nil {
		return fmt.Errorf("%w: invalid template type: %v", ErrValidation, err)
	}
	if err := e.fs.ValidateIdentifier(req.TemplateName); err != nil {
		return fmt.Errorf("%w: invalid template name: %v", ErrValidation, err)
	}
	return nil
}
