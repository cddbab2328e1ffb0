package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/tmplsync/internal/engine"
	"github.com/danieljhkim/tmplsync/internal/fsops"
	"github.com/danieljhkim/tmplsync/internal/manifest"
	"github.com/danieljhkim/tmplsync/internal/prompt"
	"github.com/danieljhkim/tmplsync/internal/template"
)

var v1 = release{
	"app.py":          {"a1", "def run():\n    pass\n"},
	"core/service.py": {"a1", "# framework v1\n"},
	"ui/index.html":   {"a1", "<h1>v1</h1>\n"},
	"README.md":       {"a1", "# my app\n"},
	"legacy.cfg":      {"a1", "legacy=true\n"},
}

var v2 = release{
	"app.py":            {"b2", "def run():\n    return 2\n"},
	"core/service.py":   {"b2", "# framework v2\n"},
	"ui/index.html":     {"a1", "<h1>v1</h1>\n"},
	"README.md":         {"b2", "# my app (v2)\n"},
	"tests/test_app.py": {"b2", "def test():\n    pass\n"},
}

func request(dest string, confirmer prompt.Confirmer) *engine.RunRequest {
	return &engine.RunRequest{
		Branch:       "v2",
		TemplateType: "playbook",
		TemplateName: "basic",
		Dest:         dest,
		Confirmer:    confirmer,
	}
}

func TestTemplateLifecycle(t *testing.T) {
	u := newUpstream(t)
	u.publish("v2", v1.tree(t, "playbook", "basic"))
	eng := newEngine(t, u)
	project := filepath.Join(t.TempDir(), "app")
	ctx := context.Background()

	// init installs exactly the selected template
	result, err := eng.Init(ctx, request(project, nil))
	require.NoError(t, err)
	assert.Len(t, result.Applied.Copied, 5)
	assert.Equal(t, "# framework v1\n", readFile(t, project, "core/service.py"))
	assert.False(t, exists(t, project, "unrelated.py"))
	assert.False(t, exists(t, project, "other"))

	local, err := manifest.Load(fsops.NewRealFS(), filepath.Join(project, "manifest.json"))
	require.NoError(t, err)
	assert.Len(t, local, 5)

	// local edits
	writeFile(t, project, "app.py", "def run():\n    return 'mine'\n")
	writeFile(t, project, "core/service.py", "# patched locally\n")
	writeFile(t, project, "legacy.cfg", "legacy=false\n")
	writeFile(t, project, "notes.txt", "untracked\n")

	u.publish("v2", v2.tree(t, "playbook", "basic"))

	// README.md is unmodified but changed upstream outside core/ and ui/,
	// so it is confirmed like any other overwrite.
	confirmer := prompt.NewScriptedConfirmer("y", "n", "y")
	result, err = eng.Update(ctx, request(project, confirmer))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Overwrite modified file 'README.md' from template? [y/N]: ",
		"Overwrite modified file 'app.py' from template? [y/N]: ",
		"Remove modified file 'legacy.cfg'? [y/N]: ",
	}, confirmer.Questions)

	// declined overwrite keeps the local file
	assert.Equal(t, "def run():\n    return 'mine'\n", readFile(t, project, "app.py"))
	// protected paths follow upstream
	assert.Equal(t, "# framework v2\n", readFile(t, project, "core/service.py"))
	// unmodified files follow upstream
	assert.Equal(t, "# my app (v2)\n", readFile(t, project, "README.md"))
	assert.Equal(t, "def test():\n    pass\n", readFile(t, project, "tests/test_app.py"))
	// confirmed removal
	assert.False(t, exists(t, project, "legacy.cfg"))
	// untracked files are left alone
	assert.Equal(t, "untracked\n", readFile(t, project, "notes.txt"))

	assert.Equal(t, 1, result.Summary.Skip)
	assert.Equal(t, []string{"app.py"}, result.Applied.Declined)

	// only the declined file is left to decide
	again := prompt.NewScriptedConfirmer()
	result, err = eng.Update(ctx, request(project, again))
	require.NoError(t, err)
	assert.Len(t, again.Questions, 1)
	assert.Equal(t, 1, result.Summary.PromptUser)
	assert.Equal(t, 0, result.Summary.AutoUpdate)
}

func TestInitRefusesNonEmptyDirectory(t *testing.T) {
	u := newUpstream(t)
	u.publish("v2", v1.tree(t, "playbook", "basic"))
	eng := newEngine(t, u)
	project := t.TempDir()
	writeFile(t, project, "keep.txt", "mine\n")

	_, err := eng.Init(context.Background(), request(project, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrDirNotEmpty))
	assert.Zero(t, u.requests)
}

func TestUnknownBranch(t *testing.T) {
	u := newUpstream(t)
	eng := newEngine(t, u)
	project := filepath.Join(t.TempDir(), "app")

	_, err := eng.Init(context.Background(), request(project, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, template.ErrFetch))

	var fe *template.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 404, fe.StatusCode)

	_, statErr := os.Stat(project)
	assert.True(t, os.IsNotExist(statErr), "a failed download must not create the project")
}

func TestUnknownTemplate(t *testing.T) {
	u := newUpstream(t)
	u.publish("v2", v1.tree(t, "playbook", "basic"))
	eng := newEngine(t, u)

	req := request(filepath.Join(t.TempDir(), "app"), nil)
	req.TemplateName = "advanced"
	_, err := eng.Init(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrTemplateNotFound))
}
