package engine

import (
	"time"

	"github.com/danieljhkim/tmplsync/internal/planner"
)

// RunResult reports the outcome of a sync.
type RunResult struct {
	// Plan is the classification of every file
	Plan *planner.Plan `json:"plan" yaml:"plan"`

	// Summary counts the plan lists
	Summary planner.Summary `json:"summary" yaml:"summary"`

	// Applied lists what was changed (nil on a dry run)
	Applied *planner.ApplyResult `json:"applied,omitempty" yaml:"applied,omitempty"`

	// Persisted is true when the project manifest was rewritten
	Persisted bool `json:"persisted" yaml:"persisted"`

	// DryRun is true when nothing was applied
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// StartedAt is when the run began
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Duration is how long the run took
	Duration time.Duration `json:"duration" yaml:"duration"`
}
