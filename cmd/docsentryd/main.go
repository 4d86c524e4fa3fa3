package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/cli"
	"github.com/docsentry/docsentry/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docsentryd",
		Short: "Docsentry daemon",
		Long:  "Docsentry daemon for serving the posts and knowledge base API",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
