package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	initFlags templateFlags
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install a template into a new project directory",
	Long: `Download a template and copy all of its files into the project directory.

The directory must be empty unless --force is given. The template manifest is
recorded in the project so later runs of 'tmplsync update' know which files
the template owns.`,
	Example: `  tmplsync init --type playbook --template basic
  tmplsync init --type job --template basic --dest ./my-app --branch v2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(context.Background(), cmd, &initFlags, func(s *syncRun) error {
			s.req.AllowNonEmpty = initForce
			s.title = "Initialization Summary"
			return s.do(s.eng.Init)
		})
	},
}

func init() {
	initFlags.register(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Initialize even if the directory is not empty")
}
