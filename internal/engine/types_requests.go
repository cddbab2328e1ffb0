package engine

import "github.com/danieljhkim/tmplsync/internal/prompt"

// RunRequest describes one template sync.
type RunRequest struct {
	// Branch is the template branch to download
	Branch string

	// TemplateType is the template category, the first path level of the template repository
	TemplateType string

	// TemplateName is the template below TemplateType
	TemplateName string

	// Dest is the project directory
	Dest string

	// ManifestName is the manifest file name (default manifest.json)
	ManifestName string

	// Force overwrites every template file without asking
	Force bool

	// DryRun builds the plan without touching the project
	DryRun bool

	// AllowNonEmpty lets Init write into a directory that already has content
	AllowNonEmpty bool

	// Confirmer answers overwrite and removal questions
	Confirmer prompt.Confirmer
}
