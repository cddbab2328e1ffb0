package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	planFlags templateFlags
	planForce bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show how an update would classify each file",
	Long: `Download the latest template and print the update plan without changing
the project. With --force the plan shows what init would overwrite.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(context.Background(), cmd, &planFlags, func(s *syncRun) error {
			s.req.DryRun = true
			s.req.Force = planForce
			s.title = "Update Plan"
			return s.do(s.eng.Run)
		})
	},
}

func init() {
	planFlags.register(planCmd)
	planCmd.Flags().BoolVarP(&planForce, "force", "f", false, "Plan as if every file were overwritten")
}
