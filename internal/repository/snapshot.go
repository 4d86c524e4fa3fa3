package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// SnapshotRepository persists knowledge base snapshots. A snapshot is
// replaced wholesale per repository; entries never update in place.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Replace stores the snapshot, removing any previous snapshot for the same
// repository in the same transaction. Entry order is preserved through the
// position column. Returns the IDs of the inserted entries in order.
func (r *SnapshotRepository) Replace(ctx context.Context, snap *domain.Snapshot) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM kb_snapshots WHERE repository = $1`,
		snap.Repository,
	); err != nil {
		return nil, fmt.Errorf("failed to delete previous snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO kb_snapshots (id, repository, generated_at, file_count, avg_sensitivity, avg_staleness, avg_confidence)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		snap.ID, snap.Repository, snap.GeneratedAt,
		snap.Stats.FileCount, snap.Stats.AvgSensitivity, snap.Stats.AvgStalenessRisk, snap.Stats.AvgConfidence,
	); err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	entryIDs := make([]string, 0, len(snap.Entries))
	for i, e := range snap.Entries {
		entryID := uuid.NewString()
		if _, err := tx.Exec(ctx,
			`INSERT INTO kb_entries (id, snapshot_id, position, path, content_sha256, sensitivity, staleness_risk, patterns, category, confidence, key_indicators, classified_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			entryID, snap.ID, i, e.Path, e.ContentSHA256, e.Sensitivity, e.StalenessRisk,
			e.Patterns, string(e.Category), e.Confidence, e.KeyIndicators, e.ClassifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to insert entry %s: %w", e.Path, err)
		}
		entryIDs = append(entryIDs, entryID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return entryIDs, nil
}

// GetLatest returns the snapshot for the given repository.
func (r *SnapshotRepository) GetLatest(ctx context.Context, repository string) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := r.pool.QueryRow(ctx,
		`SELECT id, repository, generated_at, file_count, avg_sensitivity, avg_staleness, avg_confidence
		 FROM kb_snapshots WHERE repository = $1`,
		repository,
	).Scan(&snap.ID, &snap.Repository, &snap.GeneratedAt,
		&snap.Stats.FileCount, &snap.Stats.AvgSensitivity, &snap.Stats.AvgStalenessRisk, &snap.Stats.AvgConfidence)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT path, content_sha256, sensitivity, staleness_risk, patterns, category, confidence, key_indicators, classified_at
		 FROM kb_entries WHERE snapshot_id = $1 ORDER BY position`,
		snap.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.FileClassification
		var category string
		if err := rows.Scan(&e.Path, &e.ContentSHA256, &e.Sensitivity, &e.StalenessRisk,
			&e.Patterns, &category, &e.Confidence, &e.KeyIndicators, &e.ClassifiedAt); err != nil {
			return nil, err
		}
		e.Category = domain.DocCategory(category)
		snap.Entries = append(snap.Entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Histograms are not stored; recompute them from the entries.
	snap.Stats = domain.ComputeStats(snap.Entries)
	return &snap, nil
}

// UpdateEntryEmbedding stores the embedding vector for one entry.
func (r *SnapshotRepository) UpdateEntryEmbedding(ctx context.Context, entryID string, embedding []float32) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE kb_entries SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), entryID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// GetEntryText returns the classifier-facing text for an entry: its path,
// tags, and indicators joined for embedding.
func (r *SnapshotRepository) GetEntryText(ctx context.Context, entryID string) (string, error) {
	var path, category string
	var patterns, indicators []string
	err := r.pool.QueryRow(ctx,
		`SELECT path, category, patterns, key_indicators FROM kb_entries WHERE id = $1`,
		entryID,
	).Scan(&path, &category, &patterns, &indicators)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrEntryNotFound
		}
		return "", err
	}
	return embeddingText(path, category, patterns, indicators), nil
}

// SearchSimilar ranks a repository's entries against a query embedding
// using cosine distance. Entries without embeddings are skipped.
func (r *SnapshotRepository) SearchSimilar(ctx context.Context, repository string, embedding []float32, limit int) ([]domain.SimilarEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(embedding)
	rows, err := r.pool.Query(ctx,
		`SELECT e.path, 1.0 / (1.0 + (e.embedding <=> $1)) AS score
		 FROM kb_entries e
		 JOIN kb_snapshots s ON s.id = e.snapshot_id
		 WHERE s.repository = $2 AND e.embedding IS NOT NULL
		 ORDER BY e.embedding <=> $1
		 LIMIT $3`,
		vec, repository, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SimilarEntry
	for rows.Next() {
		var e domain.SimilarEntry
		if err := rows.Scan(&e.Path, &e.Score); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func embeddingText(path, category string, patterns, indicators []string) string {
	text := path + "\ncategory: " + category
	for _, p := range patterns {
		text += "\npattern: " + p
	}
	for _, k := range indicators {
		text += "\nindicator: " + k
	}
	return text
}
