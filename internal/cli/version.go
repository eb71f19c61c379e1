package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quipu-sh/quipu/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "quipu %s\n", version.RichVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
