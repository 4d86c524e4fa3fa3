package service

import (
	"context"
	"fmt"
)

// EmbeddingGenerator defines the interface for generating embeddings
type EmbeddingGenerator interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EntryEmbeddingRepository defines the repository interface for entry
// embedding operations
type EntryEmbeddingRepository interface {
	GetEntryText(ctx context.Context, entryID string) (string, error)
	UpdateEntryEmbedding(ctx context.Context, entryID string, embedding []float32) error
}

// EmbeddingService generates and stores embeddings for knowledge base
// entries. The embedding text is the entry's classification summary, so
// similarity against a change description reflects what the document covers.
type EmbeddingService struct {
	client EmbeddingGenerator
	repo   EntryEmbeddingRepository
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingGenerator, repo EntryEmbeddingRepository) *EmbeddingService {
	return &EmbeddingService{client: client, repo: repo}
}

// GenerateEntryEmbedding generates and stores an embedding for the given
// knowledge base entry. This method is called by the background worker.
func (s *EmbeddingService) GenerateEntryEmbedding(ctx context.Context, entryID string) error {
	text, err := s.repo.GetEntryText(ctx, entryID)
	if err != nil {
		return err
	}

	embedding, err := s.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.repo.UpdateEntryEmbedding(ctx, entryID, embedding); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}

	return nil
}
