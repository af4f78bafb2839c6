package cmd

import (
	"fmt"

	"github.com/nfrund/confirmflow/cmd/confirmctl/internal/output"
	"github.com/nfrund/confirmflow/internal/app"
	"github.com/nfrund/confirmflow/internal/domain"
	"github.com/spf13/cobra"
)

var issueCmd = &cobra.Command{
	Use:   "issue <email>",
	Short: "Send a new confirmation code to an address",
	Long: `Start a confirmation for the address, replacing any pending one, and send
the code through the configured email provider.

Examples:
  confirmctl issue pat@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(deps app.Dependencies) error {
			if err := deps.Issuer.Issue(cmd.Context(), args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Code sent to %s\n", args[0])
			return nil
		})
	},
}

var resendCmd = &cobra.Command{
	Use:   "resend <email>",
	Short: "Resend the code for a pending confirmation",
	Long: `Send a fresh code for a pending confirmation. Requests closer together than
RESEND_INTERVAL are rejected.

Examples:
  confirmctl resend pat@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(deps app.Dependencies) error {
			if err := deps.Verifier.ResendCode(cmd.Context(), args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Code resent to %s\n", args[0])
			return nil
		})
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <email> <code>",
	Short: "Check a code for a pending confirmation",
	Long: `Check the code against the pending confirmation for the address. A correct
code completes the confirmation; a wrong one counts toward CODE_MAX_ATTEMPTS.

Examples:
  confirmctl confirm pat@example.com 123456
  confirmctl confirm pat@example.com 123456 --format json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(deps app.Dependencies) error {
			result, err := deps.Verifier.ConfirmCode(cmd.Context(), args[0], args[1])
			if err != nil {
				return userError(err)
			}
			return output.Confirmation(cmd.OutOrStdout(), outputFormat, result)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <email>",
	Short: "Show the pending confirmation for an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(deps app.Dependencies) error {
			info, ok, err := deps.Service.Pending(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			if !ok {
				return fmt.Errorf("no pending confirmation for %s", args[0])
			}
			return output.Pending(cmd.OutOrStdout(), outputFormat, info)
		})
	},
}

// userError surfaces the message a person would see in the form.
func userError(err error) error {
	return fmt.Errorf("%s", domain.FailureMessage(err))
}

func init() {
	rootCmd.AddCommand(issueCmd, resendCmd, confirmCmd, statusCmd)
}
