package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO posts (id, title, content, author, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		post.ID, post.Title, post.Content, post.Author, post.PublishedAt, post.CreatedAt, post.UpdatedAt,
	)
	return err
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var p domain.Post
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, content, author, published_at, created_at, updated_at
		 FROM posts WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns up to limit posts ordered newest first, starting after the
// cursor position when one is given.
func (r *PostRepository) List(ctx context.Context, afterID string, afterCreated time.Time, limit int) ([]*domain.Post, error) {
	query := `SELECT id, title, content, author, published_at, created_at, updated_at
		 FROM posts`
	args := []interface{}{}

	if afterID != "" {
		query += ` WHERE (created_at, id) < ($1, $2)`
		args = append(args, afterCreated, afterID)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE posts SET title = $1, content = $2, author = $3, published_at = $4, updated_at = $5
		 WHERE id = $6`,
		post.Title, post.Content, post.Author, post.PublishedAt, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
