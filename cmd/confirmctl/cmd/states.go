package cmd

import (
	"github.com/nfrund/confirmflow/cmd/confirmctl/internal/output"
	"github.com/spf13/cobra"
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List the auth states and their pages",
	Long: `List every state of the auth flow together with the page a browser in that
state is sent to and the topic transitions are published on.

Examples:
  confirmctl states
  confirmctl states --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.States(cmd.OutOrStdout(), outputFormat)
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
}
