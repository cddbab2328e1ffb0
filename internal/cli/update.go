package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	updateFlags  templateFlags
	updateDryRun bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a project with the latest template files",
	Long: `Download the latest template and update the project directory.

Files you have not changed are updated automatically, as are files under the
framework-owned core/ and ui/ directories. Files you changed are only
overwritten or removed after you answer 'y' at the prompt.`,
	Example: `  tmplsync update --type playbook --template basic
  tmplsync update --type playbook --template basic --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(context.Background(), cmd, &updateFlags, func(s *syncRun) error {
			s.req.DryRun = updateDryRun
			s.req.Confirmer = newConfirmer(cmd)
			s.title = "Update Summary"
			return s.do(s.eng.Update)
		})
	},
}

func init() {
	updateFlags.register(updateCmd)
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Show what would change without changing anything")
}
