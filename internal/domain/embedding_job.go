package domain

import (
	"time"
)

// EmbeddingJobStatus tracks an embedding job through its lifecycle.
type EmbeddingJobStatus string

const (
	EmbeddingJobStatusPending    EmbeddingJobStatus = "pending"
	EmbeddingJobStatusProcessing EmbeddingJobStatus = "processing"
	EmbeddingJobStatusCompleted  EmbeddingJobStatus = "completed"
	EmbeddingJobStatusFailed     EmbeddingJobStatus = "failed"
)

// EmbeddingJob queues one knowledge base entry for embedding generation.
type EmbeddingJob struct {
	ID        string
	EntryID   string
	Status    EmbeddingJobStatus
	Retries   int
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEmbeddingJob creates a pending job for the given entry.
func NewEmbeddingJob(id, entryID string, now time.Time) *EmbeddingJob {
	return &EmbeddingJob{
		ID:        id,
		EntryID:   entryID,
		Status:    EmbeddingJobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateEmbeddingJobStatus checks the status is a known value.
func ValidateEmbeddingJobStatus(s EmbeddingJobStatus) error {
	switch s {
	case EmbeddingJobStatusPending, EmbeddingJobStatusProcessing,
		EmbeddingJobStatusCompleted, EmbeddingJobStatusFailed:
		return nil
	}
	return ErrInvalidJobStatus
}
