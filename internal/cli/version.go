package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pablasso/plantrack/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plantrack %s (commit %s, built %s)\n",
				version.Version, version.CommitSHA, version.BuildDate)
		},
	}
}
