package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nfrund/confirmflow/internal/app"
	"github.com/nfrund/confirmflow/internal/config"
	"github.com/nfrund/confirmflow/internal/logging"
	"github.com/spf13/cobra"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "confirmctl",
	Short: "Operate the confirmation code backend",
	Long: `confirmctl issues, resends and checks sign-up confirmation codes against the
same code store and email provider the server uses.

It reads the server's environment (or .env file). With CODE_STORE=memory every
invocation starts from an empty store, so point it at redis to act on codes
issued by a running server.

Available commands:
  issue     Send a new confirmation code to an address
  resend    Resend the code for a pending confirmation
  confirm   Check a code for a pending confirmation
  status    Show the pending confirmation for an address
  states    List the auth states and their pages
  version   Print the version number

Use "confirmctl [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (table, json)")
}

// withDeps loads configuration, builds the backend and hands it to fn.
func withDeps(ctx context.Context, fn func(app.Dependencies) error) error {
	logging.New()
	cfg, err := config.NewForTools()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	deps, err := app.Build(ctx, cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialize backend: %w", err)
	}
	defer deps.Close()
	return fn(deps)
}
