package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// StatsResponse mirrors the daemon's snapshot stats representation.
type StatsResponse struct {
	Repository       string  `json:"repository"`
	GeneratedAt      string  `json:"generated_at"`
	FileCount        int     `json:"file_count"`
	AvgSensitivity   float64 `json:"avg_sensitivity"`
	AvgStalenessRisk float64 `json:"avg_staleness_risk"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

// SearchHitResponse mirrors one semantic search hit.
type SearchHitResponse struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// DriftRunResponse mirrors one drift run audit record.
type DriftRunResponse struct {
	ID           string `json:"id"`
	Repository   string `json:"repository"`
	PullNumber   int    `json:"pull_number"`
	Scope        string `json:"scope"`
	Candidates   int    `json:"candidates"`
	FindingCount int    `json:"finding_count"`
	MaxSeverity  string `json:"max_severity,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// KBCmd creates the kb command group.
func KBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect the documentation knowledge base",
	}

	cmd.AddCommand(kbStatsCmd())
	cmd.AddCommand(kbSearchCmd())
	cmd.AddCommand(kbPushCmd())
	cmd.AddCommand(kbPullCmd())
	cmd.AddCommand(kbRunsCmd())

	return cmd
}

func kbStatsCmd() *cobra.Command {
	var repository string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/kb/stats?repository=" + url.QueryEscape(repository))
			if err != nil {
				return fmt.Errorf("stats failed: %w", err)
			}

			var stats StatsResponse
			if err := json.Unmarshal(resp.Data, &stats); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(stats, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Printf("Repository: %s\n", stats.Repository)
			fmt.Printf("Generated: %s\n", stats.GeneratedAt)
			fmt.Printf("Files: %d\n", stats.FileCount)
			fmt.Printf("Avg sensitivity: %.2f\n", stats.AvgSensitivity)
			fmt.Printf("Avg staleness risk: %.2f\n", stats.AvgStalenessRisk)
			fmt.Printf("Avg confidence: %.2f\n", stats.AvgConfidence)
			return nil
		},
	}

	cmd.Flags().StringVarP(&repository, "repo", "r", "", "Repository (owner/name)")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func kbSearchCmd() *cobra.Command {
	var repository string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over classified documentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post("/kb/search", map[string]interface{}{
				"repository": repository,
				"query":      args[0],
				"limit":      limit,
			})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			var hits []SearchHitResponse
			if err := json.Unmarshal(resp.Data, &hits); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(hits, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(hits) == 0 {
				fmt.Println("No matches found.")
				return nil
			}
			for i, hit := range hits {
				fmt.Printf("%d. %s (score %.3f)\n", i+1, hit.Path, hit.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&repository, "repo", "r", "", "Repository (owner/name)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func kbPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <artifact.json>",
		Short: "Upload a snapshot artifact to the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read artifact: %w", err)
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.PutRaw("/kb/snapshot", data)
			if err != nil {
				return fmt.Errorf("push failed: %w", err)
			}

			var stats StatsResponse
			if err := json.Unmarshal(resp.Data, &stats); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			fmt.Printf("Snapshot stored: %s, %d files\n", stats.Repository, stats.FileCount)
			return nil
		},
	}
	return cmd
}

func kbPullCmd() *cobra.Command {
	var repository string
	var outFile string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download the current snapshot artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			data, err := api.GetRaw("/kb/snapshot?repository=" + url.QueryEscape(repository))
			if err != nil {
				return fmt.Errorf("pull failed: %w", err)
			}

			if outFile == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(outFile, data, 0644); err != nil {
				return fmt.Errorf("failed to write artifact: %w", err)
			}
			fmt.Printf("Snapshot written to %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&repository, "repo", "r", "", "Repository (owner/name)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the artifact to a file instead of stdout")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func kbRunsCmd() *cobra.Command {
	var repository string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent drift runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			path := fmt.Sprintf("/kb/drift-runs?repository=%s&limit=%d", url.QueryEscape(repository), limit)
			resp, err := api.Get(path)
			if err != nil {
				return fmt.Errorf("listing drift runs failed: %w", err)
			}

			var runs []DriftRunResponse
			if err := json.Unmarshal(resp.Data, &runs); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(runs, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(runs) == 0 {
				fmt.Println("No drift runs recorded.")
				return nil
			}
			for _, run := range runs {
				severity := run.MaxSeverity
				if severity == "" {
					severity = "clean"
				}
				fmt.Printf("PR #%d [%s] %d/%d findings (%s) %s\n",
					run.PullNumber, run.Scope, run.FindingCount, run.Candidates, severity, run.CreatedAt)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&repository, "repo", "r", "", "Repository (owner/name)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
