package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/config"
	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/github"
	"github.com/docsentry/docsentry/internal/kb"
	"github.com/docsentry/docsentry/internal/llm"
	"github.com/docsentry/docsentry/internal/notify"
	"github.com/docsentry/docsentry/internal/pipeline"
	"github.com/docsentry/docsentry/internal/service"
)

// DriftCmd creates the drift command. It analyzes a pull request against
// the knowledge base snapshot and maintains the drift comment on the PR.
func DriftCmd() *cobra.Command {
	var repository string
	var pullNumber int
	var scopeName string
	var snapshotFile string
	var noComment bool
	var noRecord bool

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Check a pull request for documentation drift",
		Long: `Fetches the pull request's change set, scores knowledge base entries
for relevance, asks the chat model which documents the change leaves
stale, and posts (or updates) a drift comment on the PR.

Requires DOCSENTRY_GITHUB_TOKEN and a chat provider key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrift(cmd, repository, pullNumber, scopeName, snapshotFile, noComment, noRecord)
		},
	}

	cmd.Flags().StringVarP(&repository, "repo", "r", "", "Repository (owner/name)")
	cmd.Flags().IntVar(&pullNumber, "pr", 0, "Pull request number")
	cmd.Flags().StringVar(&scopeName, "scope", "balanced", "Analysis scope: conservative, balanced, broad, or exhaustive")
	cmd.Flags().StringVar(&snapshotFile, "snapshot", "", "Read the snapshot artifact from a file instead of the daemon")
	cmd.Flags().BoolVar(&noComment, "no-comment", false, "Skip posting the drift comment on the PR")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Skip recording the run at the daemon")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")

	return cmd
}

func runDrift(cmd *cobra.Command, repository string, pullNumber int, scopeName, snapshotFile string, noComment, noRecord bool) error {
	ctx := cmd.Context()

	scope, err := domain.ParseAnalysisScope(scopeName)
	if err != nil {
		return err
	}

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

	snapshot, api, err := loadSnapshot(cmd, repository, snapshotFile)
	if err != nil {
		return err
	}

	ghClient := github.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL)
	driftPipeline := pipeline.NewDriftPipeline(ghClient, service.NewDriftService(chat))

	semanticScores := fetchSemanticScores(ctx, api, ghClient, repository, pullNumber)

	driftReport := driftPipeline.Run(ctx, repository, pullNumber, scope, snapshot, semanticScores)

	if !noComment {
		driftPipeline.PostComment(ctx, repository, pullNumber, driftReport)
	}

	if api != nil && !noRecord {
		recordDriftRun(api, driftReport)
	}

	notify.NewSlackNotifier(cfg.SlackToken, cfg.SlackChannel).NotifyDrift(driftReport)

	printDriftReport(driftReport)
	return nil
}

// loadSnapshot reads the snapshot artifact from a file or fetches it from
// the daemon. The returned APIClient is nil when a file was used and no
// daemon credentials are configured.
func loadSnapshot(cmd *cobra.Command, repository, snapshotFile string) (*domain.Snapshot, *APIClient, error) {
	if snapshotFile != "" {
		data, err := os.ReadFile(snapshotFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		snapshot, err := kb.Unmarshal(data)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid snapshot artifact: %w", err)
		}
		api, err := NewAPIClientWithCmd(cmd)
		if err != nil {
			api = nil
		}
		return snapshot, api, nil
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return nil, nil, err
	}
	data, err := api.GetRaw("/kb/snapshot?repository=" + url.QueryEscape(repository))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch snapshot (run 'docsentry classify' first): %w", err)
	}
	snapshot, err := kb.Unmarshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid snapshot artifact from daemon: %w", err)
	}
	return snapshot, api, nil
}

// fetchSemanticScores asks the daemon's semantic search which entries are
// close to the pull request description. Any failure just disables the
// semantic tier.
func fetchSemanticScores(ctx context.Context, api *APIClient, ghClient *github.Client, repository string, pullNumber int) map[string]float64 {
	if api == nil {
		return nil
	}

	pr, err := ghClient.GetPull(ctx, repository, pullNumber)
	if err != nil || pr.Title == "" {
		return nil
	}

	resp, err := api.Post("/kb/search", map[string]interface{}{
		"repository": repository,
		"query":      pr.Title,
		"limit":      25,
	})
	if err != nil {
		log.Printf("WARN: semantic search unavailable, continuing without it: %v", err)
		return nil
	}

	var hits []SearchHitResponse
	if err := json.Unmarshal(resp.Data, &hits); err != nil {
		return nil
	}

	scores := make(map[string]float64, len(hits))
	for _, hit := range hits {
		scores[hit.Path] = hit.Score
	}
	return scores
}

func recordDriftRun(api *APIClient, r *domain.DriftReport) {
	findings := make([]map[string]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		findings = append(findings, map[string]string{
			"path":     f.Path,
			"severity": string(f.Severity),
		})
	}

	_, err := api.Post("/kb/drift-runs", map[string]interface{}{
		"repository":  r.Repository,
		"pull_number": r.PullNumber,
		"scope":       string(r.Scope),
		"candidates":  r.Candidates,
		"findings":    findings,
	})
	if err != nil {
		log.Printf("WARN: recording drift run failed: %v", err)
	}
}

func printDriftReport(r *domain.DriftReport) {
	if !r.HasDrift() {
		fmt.Printf("No documentation drift detected (%d candidates checked)\n", r.Candidates)
		return
	}

	fmt.Printf("Documentation drift detected in %d of %d candidates:\n", len(r.Findings), r.Candidates)
	for _, f := range r.Findings {
		fmt.Printf("  [%s] %s: %s\n", f.Severity, f.Path, f.Summary)
	}
}
