package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/tmplsync/internal/engine"
	"github.com/danieljhkim/tmplsync/internal/planner"
)

// syncRun carries one init, update or plan invocation.
type syncRun struct {
	ctx   context.Context
	cmd   *cobra.Command
	eng   *engine.Engine
	req   *engine.RunRequest
	title string
}

// runSync loads settings, builds the engine and hands over to body.
func runSync(ctx context.Context, cmd *cobra.Command, flags *templateFlags, body func(*syncRun) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := flags.apply(settings); err != nil {
		return err
	}

	eng, err := newEngine(settings)
	if err != nil {
		return err
	}
	req, err := flags.request(settings)
	if err != nil {
		return err
	}

	return body(&syncRun{ctx: ctx, cmd: cmd, eng: eng, req: req})
}

// do runs op and renders whatever result it produced, including a partial
// result that comes back with an error.
func (s *syncRun) do(op func(context.Context, *engine.RunRequest) (*engine.RunResult, error)) error {
	result, err := op(s.ctx, s.req)
	if result == nil {
		return err
	}

	w := s.cmd.OutOrStdout()
	if structuredOutput() {
		if outErr := outputStructured(w, newRunView(s.req, result)); outErr != nil && err == nil {
			return fmt.Errorf("failed to write output: %w", outErr)
		}
		return err
	}

	renderResult(w, s.title, s.req, result)
	if err != nil {
		_, _ = fmt.Fprintln(w)
		PrintWarning(w, "The update stopped early; the files listed above were changed and the project manifest was not updated.")
	}
	return err
}

// runView is the structured output of a run.
type runView struct {
	TemplateType string `json:"template_type" yaml:"template_type"`
	TemplateName string `json:"template_name" yaml:"template_name"`
	Branch       string `json:"branch" yaml:"branch"`
	Dest         string `json:"dest" yaml:"dest"`

	engine.RunResult `yaml:",inline"`
}

func newRunView(req *engine.RunRequest, result *engine.RunResult) runView {
	return runView{
		TemplateType: req.TemplateType,
		TemplateName: req.TemplateName,
		Branch:       req.Branch,
		Dest:         req.Dest,
		RunResult:    *result,
	}
}

// renderResult prints a human readable summary of result.
func renderResult(w io.Writer, title string, req *engine.RunRequest, result *engine.RunResult) {
	PrintSection(w, title)
	PrintLabelValue(w, "Template", req.TemplateType+"/"+req.TemplateName)
	PrintLabelValue(w, "Branch", req.Branch)
	PrintLabelValue(w, "Destination", req.Dest)
	_, _ = fmt.Fprintln(w)

	s := result.Summary
	PrintTable(w, []string{"Category", "Files"}, [][]string{
		{"skip", strconv.Itoa(s.Skip)},
		{"auto_update", strconv.Itoa(s.AutoUpdate)},
		{"prompt_user", strconv.Itoa(s.PromptUser)},
		{"template_new", strconv.Itoa(s.TemplateNew)},
		{"template_removed", strconv.Itoa(s.TemplateRemoved)},
	})
	_, _ = fmt.Fprintln(w)

	if result.DryRun {
		renderPlan(w, result.Plan)
		return
	}

	applied := result.Applied
	if applied == nil {
		return
	}
	if len(applied.Copied) == 0 && len(applied.Removed) == 0 && len(applied.Declined) == 0 {
		PrintSuccess(w, "Project is up to date")
		return
	}
	if len(applied.Copied) > 0 {
		PrintSuccess(w, "Updated "+PrintCount(len(applied.Copied), "file", "files"))
		PrintList(w, applied.Copied, 1)
	}
	if len(applied.Removed) > 0 {
		PrintSuccess(w, "Removed "+PrintCount(len(applied.Removed), "file", "files"))
		PrintList(w, applied.Removed, 1)
	}
	if len(applied.Declined) > 0 {
		PrintWarning(w, "Kept "+PrintCount(len(applied.Declined), "locally modified file", "locally modified files"))
		PrintList(w, applied.Declined, 1)
		PrintInfo(w, "Run 'tmplsync update' again to revisit them.")
	}
}

// renderPlan lists the files a dry run would touch.
func renderPlan(w io.Writer, plan *planner.Plan) {
	if !plan.HasChanges() {
		PrintEmptyState(w, "No changes")
		return
	}
	removed := make(map[string]bool, len(plan.TemplateRemoved))
	for _, e := range plan.TemplateRemoved {
		removed[e.Key] = true
	}
	describe := func(entries []planner.Entry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			if removed[e.Key] {
				out = append(out, "remove "+e.Key)
			} else {
				out = append(out, "copy "+e.Key)
			}
		}
		return out
	}

	if len(plan.AutoUpdate) > 0 {
		PrintInfo(w, "Automatic:")
		PrintList(w, describe(plan.AutoUpdate), 1)
	}
	if len(plan.PromptUser) > 0 {
		PrintInfo(w, "Needs confirmation:")
		PrintList(w, describe(plan.PromptUser), 1)
	}
}
