package repository

import (
	"context"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DriftRunRepository records completed drift analyses.
type DriftRunRepository struct {
	pool *pgxpool.Pool
}

func NewDriftRunRepository(pool *pgxpool.Pool) *DriftRunRepository {
	return &DriftRunRepository{pool: pool}
}

func (r *DriftRunRepository) Create(ctx context.Context, run *domain.DriftRun) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO drift_runs (id, repository, pull_number, scope, candidates, finding_count, max_severity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Repository, run.PullNumber, string(run.Scope),
		run.Candidates, run.FindingCount, string(run.MaxSeverity), run.CreatedAt,
	)
	return err
}

func (r *DriftRunRepository) ListByRepository(ctx context.Context, repository string, limit int) ([]*domain.DriftRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, repository, pull_number, scope, candidates, finding_count, max_severity, created_at
		 FROM drift_runs WHERE repository = $1 ORDER BY created_at DESC LIMIT $2`,
		repository, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.DriftRun
	for rows.Next() {
		var run domain.DriftRun
		var scope, severity string
		if err := rows.Scan(&run.ID, &run.Repository, &run.PullNumber, &scope,
			&run.Candidates, &run.FindingCount, &severity, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Scope = domain.AnalysisScope(scope)
		run.MaxSeverity = domain.DriftSeverity(severity)
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
