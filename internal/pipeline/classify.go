// Package pipeline orchestrates the classification and drift workflows:
// GitHub on one side, the chat model on the other, a snapshot or report in
// the middle. Both the client CLI and the daemon scheduler run these.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/github"
	"github.com/docsentry/docsentry/internal/service"
	"github.com/google/uuid"
)

// Documentation file suffixes considered for classification.
var docSuffixes = []string{".md", ".markdown", ".rst"}

// GitHubDocSource is the slice of the GitHub client the classify pipeline
// uses.
type GitHubDocSource interface {
	ListDocFiles(ctx context.Context, repo, ref string, suffixes []string) ([]github.TreeEntry, error)
	GetFileContent(ctx context.Context, repo, path, ref string) (string, error)
}

// Classifier turns fetched files into knowledge base entries.
type Classifier interface {
	ClassifyFiles(ctx context.Context, files []service.DocFile) []*domain.FileClassification
}

// ClassifyPipeline builds a knowledge base snapshot for a repository.
type ClassifyPipeline struct {
	source     GitHubDocSource
	classifier Classifier
	now        func() time.Time
}

// NewClassifyPipeline creates a ClassifyPipeline.
func NewClassifyPipeline(source GitHubDocSource, classifier Classifier) *ClassifyPipeline {
	return &ClassifyPipeline{
		source:     source,
		classifier: classifier,
		now:        time.Now,
	}
}

// Run lists the repository's documentation files at ref, fetches and
// classifies them, and returns a fresh snapshot. A failed listing is logged
// and treated as an empty repository; files that fail to fetch are logged
// and skipped. Returns nil when nothing could be classified.
func (p *ClassifyPipeline) Run(ctx context.Context, repository, ref string) *domain.Snapshot {
	entries, err := p.source.ListDocFiles(ctx, repository, ref, docSuffixes)
	if err != nil {
		log.Printf("WARN: listing documentation files for %s failed: %v", repository, err)
		entries = nil
	}
	if len(entries) == 0 {
		log.Printf("classify %s: no documentation files found, nothing to do", repository)
		return nil
	}
	log.Printf("classify %s: %d documentation files found", repository, len(entries))

	var files []service.DocFile
	for _, entry := range entries {
		content, err := p.source.GetFileContent(ctx, repository, entry.Path, ref)
		if err != nil {
			log.Printf("WARN: fetching %s failed, skipping: %v", entry.Path, err)
			continue
		}
		files = append(files, service.DocFile{Path: entry.Path, Content: content})
	}
	if len(files) == 0 {
		log.Printf("classify %s: no files could be fetched, nothing to do", repository)
		return nil
	}

	classified := p.classifier.ClassifyFiles(ctx, files)
	if len(classified) == 0 {
		log.Printf("classify %s: no files could be classified, nothing to do", repository)
		return nil
	}

	snap := domain.NewSnapshot(uuid.NewString(), repository, p.now().UTC(), classified)
	log.Printf("classify %s: %d of %d files classified, avg sensitivity %.2f",
		repository, len(classified), len(files), snap.Stats.AvgSensitivity)
	return snap
}
