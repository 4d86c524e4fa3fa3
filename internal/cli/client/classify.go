package client

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/config"
	"github.com/docsentry/docsentry/internal/github"
	"github.com/docsentry/docsentry/internal/kb"
	"github.com/docsentry/docsentry/internal/llm"
	"github.com/docsentry/docsentry/internal/pipeline"
	"github.com/docsentry/docsentry/internal/service"
)

// ClassifyCmd creates the classify command. It runs the full
// classification pipeline locally: list documentation files on GitHub,
// classify them with the chat model, and store the resulting snapshot.
func ClassifyCmd() *cobra.Command {
	var repository string
	var ref string
	var outFile string
	var noPush bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Build a knowledge base snapshot for a repository",
		Long: `Lists the repository's documentation files on GitHub, classifies them
with the configured chat model, and uploads the snapshot to the daemon.

Requires DOCSENTRY_GITHUB_TOKEN and a chat provider key
(DOCSENTRY_OPENAI_API_KEY or DOCSENTRY_ANTHROPIC_API_KEY).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, repository, ref, outFile, noPush)
		},
	}

	cmd.Flags().StringVarP(&repository, "repo", "r", "", "Repository (owner/name)")
	cmd.Flags().StringVar(&ref, "ref", "", "Git ref to classify (default: the default branch)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Also write the snapshot artifact to a file")
	cmd.Flags().BoolVar(&noPush, "no-push", false, "Skip uploading the snapshot to the daemon")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func runClassify(cmd *cobra.Command, repository, ref, outFile string, noPush bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.HasGitHub() {
		return fmt.Errorf("DOCSENTRY_GITHUB_TOKEN is required")
	}

	chat, err := llm.NewChatClient(llm.Config{
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat client: %w", err)
	}

	ghClient := github.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL)
	classifier := service.NewClassifierService(chat, cfg.ClassifyBatchSize,
		time.Duration(cfg.ClassifyBatchDelaySec)*time.Second)
	classifyPipeline := pipeline.NewClassifyPipeline(ghClient, classifier)

	snap := classifyPipeline.Run(cmd.Context(), repository, ref)
	if snap == nil {
		fmt.Println("Nothing to classify.")
		return nil
	}

	artifact, err := kb.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if outFile != "" {
		if err := os.WriteFile(outFile, artifact, 0644); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}
		fmt.Printf("Snapshot written to %s\n", outFile)
	}

	if !noPush {
		api, err := NewAPIClientWithCmd(cmd)
		if err != nil {
			return err
		}
		if _, err := api.PutRaw("/kb/snapshot", artifact); err != nil {
			return fmt.Errorf("failed to upload snapshot: %w", err)
		}
		fmt.Println("Snapshot uploaded to daemon")
	}

	fmt.Printf("Classified %d files (avg sensitivity %.2f, avg staleness %.2f)\n",
		snap.Stats.FileCount, snap.Stats.AvgSensitivity, snap.Stats.AvgStalenessRisk)
	return nil
}
