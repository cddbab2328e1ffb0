package planner

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/danieljhkim/tmplsync/internal/prompt"
)

// Apply executes plan against projectRoot, copying template files from
// templateRoot. AutoUpdate entries run first; PromptUser entries follow in key
// order and ask confirmer unless force is set.
//
// The first failing operation stops the pass. The returned ApplyResult always
// lists what was done before the failure.
func (p *Planner) Apply(plan *Plan, templateRoot, projectRoot string, force bool, confirmer prompt.Confirmer) (*ApplyResult, error) {
	result := newApplyResult()
	removed := plan.removedKeys()

	for _, entry := range plan.AutoUpdate {
		if err := p.applyEntry(entry, removed[entry.Key], templateRoot, projectRoot, result); err != nil {
			return result, err
		}
	}

	pending := slices.Clone(plan.PromptUser)
	slices.SortFunc(pending, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})

	for _, entry := range pending {
		isRemoval := removed[entry.Key]

		if !force {
			if confirmer == nil {
				return result, fmt.Errorf("confirmation required for %s but no confirmer is available", entry.Key)
			}
			answer, err := confirmer.Ask(question(entry.Key, isRemoval))
			if err != nil {
				return result, fmt.Errorf("failed to confirm %s: %w", entry.Key, err)
			}
			if !prompt.IsYes(answer) {
				p.logger.Info("kept local file", "key", entry.Key)
				result.Declined = append(result.Declined, entry.Key)
				continue
			}
		}

		if err := p.applyEntry(entry, isRemoval, templateRoot, projectRoot, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// applyEntry deletes or copies one file and records it in result.
func (p *Planner) applyEntry(entry Entry, isRemoval bool, templateRoot, projectRoot string, result *ApplyResult) error {
	dest := filepath.Join(projectRoot, filepath.FromSlash(entry.Key))

	if isRemoval {
		if err := p.safeOps.RemoveFile(dest); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Key, err)
		}
		p.logger.Debug("removed file", "key", entry.Key)
		result.Removed = append(result.Removed, entry.Key)
		return nil
	}

	if err := p.safeOps.CopyFromTemplate(templateRoot, entry.TemplatePath, dest); err != nil {
		return fmt.Errorf("failed to update %s: %w", entry.Key, err)
	}
	p.logger.Debug("copied file", "key", entry.Key, "template_path", entry.TemplatePath)
	result.Copied = append(result.Copied, entry.Key)
	return nil
}

func question(key string, isRemoval bool) string {
	if isRemoval {
		return fmt.Sprintf("Remove modified file '%s'? [y/N]: ", key)
	}
	return fmt.Sprintf("Overwrite modified file '%s' from template? [y/N]: ", key)
}
