package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quipu-sh/quipu/internal/script"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the key names recognized inside <...> specs",
	Run: func(cmd *cobra.Command, _ []string) {
		w := cmd.OutOrStdout()

		fmt.Fprintln(w, "Key names (case sensitive):")
		for _, name := range script.KeyNames() {
			fmt.Fprintf(w, "  <%s>\n", name)
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Modifiers (case insensitive, joined with '-'):")
		fmt.Fprintln(w, "  C / Ctrl            control")
		fmt.Fprintln(w, "  A / M / Alt / Meta  alt")
		fmt.Fprintln(w, "  S / Shift           shift")

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Examples: <C-c> <A-ret> <C-S-f> <A-S-F5>")
		fmt.Fprintln(w, "Unrecognized specs are typed literally, brackets included.")
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
