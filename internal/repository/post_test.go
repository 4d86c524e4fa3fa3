//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/testutil"
)

func newStoredPost(ctx context.Context, t *testing.T, repo *PostRepository, title string, createdAt time.Time) *domain.Post {
	t.Helper()
	post := domain.NewPost(uuid.NewString(), title, "Content", "ana", createdAt.Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, post))
	return post
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPostRepository(pool)
	post := newStoredPost(ctx, t, repo, "First post", time.Now().UTC())

	retrieved, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, retrieved.ID)
	assert.Equal(t, "First post", retrieved.Title)
	assert.Equal(t, "ana", retrieved.Author)
	assert.Nil(t, retrieved.PublishedAt)
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPostRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostRepository_ListPaginates(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPostRepository(pool)

	base := time.Now().UTC().Add(-time.Hour)
	var posts []*domain.Post
	for i := 0; i < 5; i++ {
		posts = append(posts, newStoredPost(ctx, t, repo, "Post", base.Add(time.Duration(i)*time.Minute)))
	}

	first, err := repo.List(ctx, "", time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	// Newest first.
	assert.Equal(t, posts[4].ID, first[0].ID)
	assert.Equal(t, posts[3].ID, first[1].ID)

	last := first[len(first)-1]
	second, err := repo.List(ctx, last.ID, last.CreatedAt, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, posts[2].ID, second[0].ID)
	assert.Equal(t, posts[1].ID, second[1].ID)
}

func TestPostRepository_UpdatePublishState(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPostRepository(pool)
	post := newStoredPost(ctx, t, repo, "Draft", time.Now().UTC())

	publishedAt := time.Now().UTC().Truncate(time.Microsecond)
	post.PublishedAt = &publishedAt
	post.UpdatedAt = publishedAt
	require.NoError(t, repo.Update(ctx, post))

	retrieved, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.PublishedAt)
	assert.Equal(t, publishedAt, retrieved.PublishedAt.UTC())

	post.PublishedAt = nil
	require.NoError(t, repo.Update(ctx, post))

	retrieved, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved.PublishedAt)
}

func TestPostRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPostRepository(pool)

	ghost := domain.NewPost(uuid.NewString(), "Ghost", "Content", "ana", time.Now().UTC())
	assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrPostNotFound)
}

func TestPostRepository_Delete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPostRepository(pool)
	post := newStoredPost(ctx, t, repo, "Doomed", time.Now().UTC())

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, post.ID), domain.ErrPostNotFound)
}
