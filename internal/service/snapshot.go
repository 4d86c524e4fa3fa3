package service

import (
	"context"
	"log"
	"time"

	"github.com/docsentry/docsentry/internal/domain"
)

// SnapshotRepositoryInterface defines the repository interface for snapshot
// persistence
type SnapshotRepositoryInterface interface {
	// Replace overwrites the repository's snapshot wholesale and returns
	// the new entry IDs.
	Replace(ctx context.Context, snap *domain.Snapshot) ([]string, error)
	GetLatest(ctx context.Context, repository string) (*domain.Snapshot, error)
	SearchSimilar(ctx context.Context, repository string, embedding []float32, limit int) ([]domain.SimilarEntry, error)
}

// EmbeddingJobEnqueuer defines the interface for queueing embedding jobs
type EmbeddingJobEnqueuer interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// DriftRunRepositoryInterface defines the repository interface for drift run
// audit records
type DriftRunRepositoryInterface interface {
	Create(ctx context.Context, run *domain.DriftRun) error
	ListByRepository(ctx context.Context, repository string, limit int) ([]*domain.DriftRun, error)
}

// KnowledgeBaseService handles snapshot storage, semantic search, and drift
// run audit records.
type KnowledgeBaseService struct {
	repo     SnapshotRepositoryInterface
	jobs     EmbeddingJobEnqueuer
	runs     DriftRunRepositoryInterface
	embedder EmbeddingGenerator
	uuidGen  UUIDGenerator
	now      func() time.Time
}

// NewKnowledgeBaseService creates a new KnowledgeBaseService instance.
// jobs and embedder may be nil when embeddings are not configured; search
// then reports an invalid operation.
func NewKnowledgeBaseService(repo SnapshotRepositoryInterface, jobs EmbeddingJobEnqueuer, runs DriftRunRepositoryInterface, embedder EmbeddingGenerator) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		repo:     repo,
		jobs:     jobs,
		runs:     runs,
		embedder: embedder,
		uuidGen:  &DefaultUUIDGenerator{},
		now:      time.Now,
	}
}

// ReplaceSnapshot validates and stores a snapshot, replacing the previous
// one for the repository, and enqueues embedding jobs for the new entries.
func (s *KnowledgeBaseService) ReplaceSnapshot(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	if err := domain.ValidateSnapshot(snap); err != nil {
		return nil, err
	}

	if snap.ID == "" {
		snap.ID = s.uuidGen.NewString()
	}
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = s.now().UTC()
	}
	snap.Stats = domain.ComputeStats(snap.Entries)

	entryIDs, err := s.repo.Replace(ctx, snap)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to store snapshot", err)
	}

	if s.jobs != nil {
		for _, entryID := range entryIDs {
			job := domain.NewEmbeddingJob(s.uuidGen.NewString(), entryID, s.now().UTC())
			if err := s.jobs.Create(ctx, job); err != nil {
				// The snapshot is stored; a missed job only delays the
				// semantic tier for that entry.
				log.Printf("WARN: failed to enqueue embedding job for entry %s: %v", entryID, err)
			}
		}
	}

	return snap, nil
}

// GetLatest returns the current snapshot for a repository.
func (s *KnowledgeBaseService) GetLatest(ctx context.Context, repository string) (*domain.Snapshot, error) {
	if repository == "" {
		return nil, domain.ErrMissingRepository
	}
	return s.repo.GetLatest(ctx, repository)
}

// Search embeds the query and returns the most similar entries.
func (s *KnowledgeBaseService) Search(ctx context.Context, repository, query string, limit int) ([]domain.SimilarEntry, error) {
	if repository == "" {
		return nil, domain.ErrMissingRepository
	}
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query is required")
	}
	if s.embedder == nil {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidOperation, "semantic search is not configured")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to embed query", err)
	}

	docs, err := s.repo.SearchSimilar(ctx, repository, embedding, limit)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "search failed", err)
	}
	return docs, nil
}

// RecordDriftRun stores an audit record for a completed drift analysis.
func (s *KnowledgeBaseService) RecordDriftRun(ctx context.Context, report *domain.DriftReport) (*domain.DriftRun, error) {
	if report.Repository == "" {
		return nil, domain.ErrMissingRepository
	}

	run := &domain.DriftRun{
		ID:           s.uuidGen.NewString(),
		Repository:   report.Repository,
		PullNumber:   report.PullNumber,
		Scope:        report.Scope,
		Candidates:   report.Candidates,
		FindingCount: len(report.Findings),
		MaxSeverity:  report.MaxSeverity(),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.runs.Create(ctx, run); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to record drift run", err)
	}
	return run, nil
}

// ListDriftRuns returns recent drift runs for a repository, newest first.
func (s *KnowledgeBaseService) ListDriftRuns(ctx context.Context, repository string, limit int) ([]*domain.DriftRun, error) {
	if repository == "" {
		return nil, domain.ErrMissingRepository
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runs.ListByRepository(ctx, repository, limit)
}
