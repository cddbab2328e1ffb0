package planner

import "github.com/danieljhkim/tmplsync/internal/manifest"

// Entry is one classified file.
type Entry struct {
	// Key is the file path relative to the project root (POSIX separators)
	Key string `json:"key" yaml:"key"`

	// TemplatePath is the source path relative to the template root
	TemplatePath string `json:"template_path" yaml:"template_path"`
}

// Plan is the classification of every template and tracked file.
//
// TemplateNew and TemplateRemoved are annotations. Every key also appears in
// exactly one of Skip, AutoUpdate or PromptUser.
type Plan struct {
	Skip            []Entry `json:"skip" yaml:"skip"`
	AutoUpdate      []Entry `json:"auto_update" yaml:"auto_update"`
	PromptUser      []Entry `json:"prompt_user" yaml:"prompt_user"`
	TemplateNew     []Entry `json:"template_new" yaml:"template_new"`
	TemplateRemoved []Entry `json:"template_removed" yaml:"template_removed"`

	// Template is the manifest of the fresh template tree
	Template manifest.Manifest `json:"-" yaml:"-"`

	// Local is the manifest recorded in the project when the plan was built
	Local manifest.Manifest `json:"-" yaml:"-"`
}

// Summary holds the size of each plan list.
type Summary struct {
	Skip            int `json:"skip" yaml:"skip"`
	AutoUpdate      int `json:"auto_update" yaml:"auto_update"`
	PromptUser      int `json:"prompt_user" yaml:"prompt_user"`
	TemplateNew     int `json:"template_new" yaml:"template_new"`
	TemplateRemoved int `json:"template_removed" yaml:"template_removed"`
}

// ApplyResult records what Apply actually did.
type ApplyResult struct {
	// Copied lists keys written from the template
	Copied []string `json:"copied" yaml:"copied"`

	// Removed lists keys deleted from the project
	Removed []string `json:"removed" yaml:"removed"`

	// Declined lists prompted keys the user chose to keep
	Declined []string `json:"declined" yaml:"declined"`
}

// NewPlan creates an empty Plan with non-nil lists.
func NewPlan() *Plan {
	return &Plan{
		Skip:            []Entry{},
		AutoUpdate:      []Entry{},
		PromptUser:      []Entry{},
		TemplateNew:     []Entry{},
		TemplateRemoved: []Entry{},
		Template:        manifest.Manifest{},
		Local:           manifest.Manifest{},
	}
}

func newApplyResult() *ApplyResult {
	return &ApplyResult{
		Copied:   []string{},
		Removed:  []string{},
		Declined: []string{},
	}
}

// Summary returns the count of each list.
func (p *Plan) Summary() Summary {
	return Summary{
		Skip:            len(p.Skip),
		AutoUpdate:      len(p.AutoUpdate),
		PromptUser:      len(p.PromptUser),
		TemplateNew:     len(p.TemplateNew),
		TemplateRemoved: len(p.TemplateRemoved),
	}
}

// Details returns the plan lists keyed by name.
func (p *Plan) Details() map[string][]Entry {
	return map[string][]Entry{
		"skip":             p.Skip,
		"auto_update":      p.AutoUpdate,
		"prompt_user":      p.PromptUser,
		"template_new":     p.TemplateNew,
		"template_removed": p.TemplateRemoved,
	}
}

// HasChanges reports whether applying the plan could touch the project.
func (p *Plan) HasChanges() bool {
	return len(p.AutoUpdate) > 0 || len(p.PromptUser) > 0 ||
		len(p.TemplateNew) > 0 || len(p.TemplateRemoved) > 0
}

// removedKeys returns the set of keys annotated as removed upstream.
func (p *Plan) removedKeys() map[string]bool {
	removed := make(map[string]bool, len(p.TemplateRemoved))
	for _, e := range p.TemplateRemoved {
		removed[e.Key] = true
	}
	return removed
}
