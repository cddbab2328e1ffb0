package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/tmplsync/internal/clock"
	"github.com/danieljhkim/tmplsync/internal/config"
	"github.com/danieljhkim/tmplsync/internal/engine"
	"github.com/danieljhkim/tmplsync/internal/fsops"
	"github.com/danieljhkim/tmplsync/internal/hash"
	"github.com/danieljhkim/tmplsync/internal/planner"
	"github.com/danieljhkim/tmplsync/internal/prompt"
	"github.com/danieljhkim/tmplsync/internal/template"
)

const downloadTimeout = 5 * time.Minute

// loadSettings resolves configuration for the current invocation.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if settings.File != "" {
		logger.Debug("loaded config file", "path", settings.File)
	}
	return settings, nil
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(settings *config.Settings) (*engine.Engine, error) {
	client, err := template.NewHTTPClient(settings.ProxyURL(), downloadTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	fs := fsops.NewRealFS()
	repo := template.NewRepository(settings.BaseURL,
		template.WithHTTPClient(client),
		template.WithToken(settings.Token),
		template.WithFS(fs),
		template.WithLogger(logger),
	)
	pl := planner.New(fs, hash.NewMD5Hasher(), logger)

	return engine.New(repo, pl, fs, &clock.RealClock{}, logger), nil
}

// newConfirmer returns the confirmer for prompts. Questions go to stderr when
// stdout carries structured output.
func newConfirmer(cmd *cobra.Command) prompt.Confirmer {
	in := cmd.InOrStdin()
	if in == os.Stdin && !structuredOutput() {
		return prompt.NewTerminalConfirmer()
	}
	out := cmd.OutOrStdout()
	if structuredOutput() {
		out = cmd.ErrOrStderr()
	}
	return prompt.NewReaderConfirmer(in, out)
}

func structuredOutput() bool {
	return jsonOutput || yamlOutput
}

// outputStructured writes v as JSON or YAML depending on the global flags.
func outputStructured(w io.Writer, v any) error {
	if yamlOutput {
		return outputYAML(w, v)
	}
	return outputJSON(w, v)
}

// outputJSON outputs a value as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML outputs a value as YAML.
func outputYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
