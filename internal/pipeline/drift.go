package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/github"
	"github.com/docsentry/docsentry/internal/report"
	"github.com/docsentry/docsentry/internal/service"
)

// GitHubPullSource is the slice of the GitHub client the drift pipeline
// uses.
type GitHubPullSource interface {
	GetPull(ctx context.Context, repo string, number int) (*github.PullRequest, error)
	ListPullFiles(ctx context.Context, repo string, number int) ([]github.PullFile, error)
	ListIssueComments(ctx context.Context, repo string, number int) ([]github.Comment, error)
	CreateIssueComment(ctx context.Context, repo string, number int, body string) error
	UpdateIssueComment(ctx context.Context, repo string, commentID int64, body string) error
}

// DriftAnalyzer runs drift analysis over a change set.
type DriftAnalyzer interface {
	Analyze(ctx context.Context, input service.AnalyzeDriftInput) *domain.DriftReport
}

// DriftPipeline analyzes a pull request against a knowledge base snapshot
// and maintains the drift comment on the PR.
type DriftPipeline struct {
	source   GitHubPullSource
	analyzer DriftAnalyzer
}

// NewDriftPipeline creates a DriftPipeline.
func NewDriftPipeline(source GitHubPullSource, analyzer DriftAnalyzer) *DriftPipeline {
	return &DriftPipeline{source: source, analyzer: analyzer}
}

// Run fetches the pull request's change set and runs drift analysis against
// the snapshot. GitHub failures degrade: a missing pull request leaves the
// description empty, and a failed file listing yields an empty report
// instead of aborting. semanticScores may be nil.
func (p *DriftPipeline) Run(ctx context.Context, repository string, pullNumber int, scope domain.AnalysisScope, snapshot *domain.Snapshot, semanticScores map[string]float64) *domain.DriftReport {
	pr, err := p.source.GetPull(ctx, repository, pullNumber)
	if err != nil {
		log.Printf("WARN: fetching pull request %s#%d failed: %v", repository, pullNumber, err)
		pr = nil
	}

	pullFiles, err := p.source.ListPullFiles(ctx, repository, pullNumber)
	if err != nil {
		log.Printf("WARN: listing changed files for %s#%d failed: %v", repository, pullNumber, err)
		pullFiles = nil
	}
	if len(pullFiles) == 0 {
		log.Printf("drift %s#%d: no changed files, nothing to analyze", repository, pullNumber)
		return &domain.DriftReport{
			Repository: repository,
			PullNumber: pullNumber,
			Scope:      scope,
			AnalyzedAt: time.Now().UTC(),
		}
	}

	changed := make([]service.ChangedFile, 0, len(pullFiles))
	for _, f := range pullFiles {
		changed = append(changed, service.ChangedFile{
			Path:      f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Patch:     f.Patch,
		})
	}

	var description string
	if pr != nil {
		description = pr.Title
		if pr.Body != "" {
			description += "\n" + pr.Body
		}
	}

	return p.analyzer.Analyze(ctx, service.AnalyzeDriftInput{
		Repository:     repository,
		PullNumber:     pullNumber,
		Scope:          scope,
		Description:    description,
		Snapshot:       snapshot,
		Changed:        changed,
		SemanticScores: semanticScores,
	})
}

// PostComment writes the drift report to the PR, updating the existing
// drift comment when one exists. Comment failures are logged, not fatal;
// the report itself already succeeded.
func (p *DriftPipeline) PostComment(ctx context.Context, repository string, pullNumber int, r *domain.DriftReport) {
	body := report.RenderDriftComment(r)

	comments, err := p.source.ListIssueComments(ctx, repository, pullNumber)
	if err != nil {
		log.Printf("WARN: listing PR comments failed, posting new comment: %v", err)
		comments = nil
	}

	for _, c := range comments {
		if strings.Contains(c.Body, report.CommentMarker) {
			if err := p.source.UpdateIssueComment(ctx, repository, c.ID, body); err != nil {
				log.Printf("WARN: updating drift comment failed: %v", err)
			}
			return
		}
	}

	if err := p.source.CreateIssueComment(ctx, repository, pullNumber, body); err != nil {
		log.Printf("WARN: creating drift comment failed: %v", err)
	}
}
