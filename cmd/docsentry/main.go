package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/cli"
	"github.com/docsentry/docsentry/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docsentry",
		Short: "Docsentry CLI - documentation classification and drift detection",
		Long: `Docsentry CLI classifies repository documentation and checks pull
requests for documentation drift.

Environment variables:
  DOCSENTRY_API_TOKEN   API token for the daemon (required for daemon commands)
  DOCSENTRY_API_URL     Daemon base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-token", "", "API token for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.ClassifyCmd())
	rootCmd.AddCommand(client.DriftCmd())
	rootCmd.AddCommand(client.PostCmd())
	rootCmd.AddCommand(client.KBCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
