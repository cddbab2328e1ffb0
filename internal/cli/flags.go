package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/tmplsync/internal/config"
	"github.com/danieljhkim/tmplsync/internal/engine"
)

// templateFlags are shared by init, update and plan.
type templateFlags struct {
	name   string
	typ    string
	dest   string
	branch string

	proxyHost string
	proxyPort int
	proxyUser string
	proxyPass string
}

func (f *templateFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "template", "", "Template name, e.g. basic")
	flags.StringVar(&f.typ, "type", "", "Template type, e.g. playbook")
	flags.StringVarP(&f.dest, "dest", "d", ".", "Project directory")
	flags.StringVarP(&f.branch, "branch", "b", "", "Branch of the template repository (default from config)")
	flags.StringVar(&f.proxyHost, "proxy-host", "", "Hostname of the proxy server")
	flags.IntVar(&f.proxyPort, "proxy-port", 0, "Port of the proxy server")
	flags.StringVar(&f.proxyUser, "proxy-user", "", "Username for the proxy server")
	flags.StringVar(&f.proxyPass, "proxy-pass", "", "Password for the proxy server")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("type")
}

// apply overrides settings with the flags given on the command line.
func (f *templateFlags) apply(settings *config.Settings) error {
	if f.branch != "" {
		settings.Branch = f.branch
	}
	if f.proxyHost != "" {
		settings.Proxy.Host = f.proxyHost
	}
	if f.proxyPort != 0 {
		settings.Proxy.Port = f.proxyPort
	}
	if f.proxyUser != "" {
		settings.Proxy.User = f.proxyUser
	}
	if f.proxyPass != "" {
		settings.Proxy.Pass = f.proxyPass
	}
	return settings.Validate()
}

// request builds the engine request for these flags.
func (f *templateFlags) request(settings *config.Settings) (*engine.RunRequest, error) {
	dest, err := filepath.Abs(f.dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination %s: %w", f.dest, err)
	}
	return &engine.RunRequest{
		Branch:       settings.Branch,
		TemplateType: f.typ,
		TemplateName: f.name,
		Dest:         dest,
		ManifestName: settings.ManifestName,
	}, nil
}
