package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// InitCmd creates the init command, which saves the daemon URL and API
// token to the global config.
func InitCmd() *cobra.Command {
	var apiToken string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save docsentry credentials",
		Long:  "Stores the daemon URL and API token in the user config directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(apiToken, apiURL, outputJSON)
		},
	}

	cmd.Flags().StringVar(&apiToken, "token", "", "API token for authentication")
	cmd.Flags().StringVar(&apiURL, "url", "", "API base URL (default: http://localhost:8080)")

	return cmd
}

func runInit(apiToken, apiURL string, outputJSON bool) error {
	if apiToken == "" {
		apiToken = os.Getenv(envAPIToken)
	}
	if apiToken == "" {
		fmt.Print("Enter API token: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API token: %w", err)
		}
		apiToken = strings.TrimSpace(input)
		if apiToken == "" {
			return fmt.Errorf("API token is required")
		}
	}

	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	// Verify the credentials before saving them.
	api := NewAPIClientWithConfig(apiToken, apiURL)
	if _, err := api.Get("/posts?limit=1"); err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIToken: apiToken, APIURL: apiURL}); err != nil {
		return err
	}

	configPath, _ := GetConfigPath()
	if outputJSON {
		result := map[string]interface{}{
			"success": true,
			"api_url": apiURL,
			"config":  configPath,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Credentials saved to %s\n", configPath)
	}

	return nil
}
