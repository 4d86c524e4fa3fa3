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

func testClassification(path string, sensitivity int) *domain.FileClassification {
	return &domain.FileClassification{
		Path:          path,
		ContentSHA256: "deadbeef",
		Sensitivity:   sensitivity,
		StalenessRisk: 2,
		Patterns:      []string{"api_contract"},
		Category:      domain.DocCategoryAPIReference,
		Confidence:    0.9,
		KeyIndicators: []string{"endpoint table"},
		ClassifiedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func testSnapshot(repository string, entries ...*domain.FileClassification) *domain.Snapshot {
	return domain.NewSnapshot(uuid.NewString(), repository, time.Now().UTC().Truncate(time.Microsecond), entries)
}

// axisVector returns a 1536-dim unit vector along the given axis, so cosine
// distance between different axes is maximal and identical axes match.
func axisVector(axis int) []float32 {
	vec := make([]float32, 1536)
	vec[axis%1536] = 1
	return vec
}

func TestSnapshotRepository_ReplaceAndGetLatest(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSnapshotRepository(pool)

	snap := testSnapshot("acme/widgets",
		testClassification("docs/api.md", 3),
		testClassification("docs/guide.md", 1),
	)

	entryIDs, err := repo.Replace(ctx, snap)
	require.NoError(t, err)
	assert.Len(t, entryIDs, 2)

	retrieved, err := repo.GetLatest(ctx, "acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, retrieved.ID)
	require.Len(t, retrieved.Entries, 2)
	// Entry order survives the round trip.
	assert.Equal(t, "docs/api.md", retrieved.Entries[0].Path)
	assert.Equal(t, "docs/guide.md", retrieved.Entries[1].Path)
	assert.Equal(t, 3, retrieved.Entries[0].Sensitivity)
	assert.Equal(t, []string{"api_contract"}, retrieved.Entries[0].Patterns)
	assert.Equal(t, 2, retrieved.Stats.FileCount)
}

func TestSnapshotRepository_ReplaceOverwritesPrevious(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSnapshotRepository(pool)

	first := testSnapshot("acme/widgets", testClassification("docs/old.md", 1))
	_, err := repo.Replace(ctx, first)
	require.NoError(t, err)

	second := testSnapshot("acme/widgets", testClassification("docs/new.md", 2))
	_, err = repo.Replace(ctx, second)
	require.NoError(t, err)

	retrieved, err := repo.GetLatest(ctx, "acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, second.ID, retrieved.ID)
	require.Len(t, retrieved.Entries, 1)
	assert.Equal(t, "docs/new.md", retrieved.Entries[0].Path)
}

func TestSnapshotRepository_GetLatest_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSnapshotRepository(pool)

	_, err := repo.GetLatest(ctx, "acme/nothing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSnapshotRepository_EntryEmbeddingRoundTrip(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSnapshotRepository(pool)

	snap := testSnapshot("acme/widgets", testClassification("docs/api.md", 3))
	entryIDs, err := repo.Replace(ctx, snap)
	require.NoError(t, err)
	require.Len(t, entryIDs, 1)

	text, err := repo.GetEntryText(ctx, entryIDs[0])
	require.NoError(t, err)
	assert.Contains(t, text, "docs/api.md")
	assert.Contains(t, text, "api_contract")

	require.NoError(t, repo.UpdateEntryEmbedding(ctx, entryIDs[0], axisVector(0)))
}

func TestSnapshotRepository_UpdateEntryEmbedding_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSnapshotRepository(pool)

	err := repo.UpdateEntryEmbedding(ctx, uuid.NewString(), axisVector(0))
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestSnapshotRepository_SearchSimilar(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSnapshotRepository(pool)

	snap := testSnapshot("acme/widgets",
		testClassification("docs/auth.md", 3),
		testClassification("docs/billing.md", 2),
		testClassification("docs/unembedded.md", 1),
	)
	entryIDs, err := repo.Replace(ctx, snap)
	require.NoError(t, err)
	require.Len(t, entryIDs, 3)

	// docs/auth.md sits on axis 0, docs/billing.md on axis 1; the third
	// entry stays without an embedding and must be excluded.
	require.NoError(t, repo.UpdateEntryEmbedding(ctx, entryIDs[0], axisVector(0)))
	require.NoError(t, repo.UpdateEntryEmbedding(ctx, entryIDs[1], axisVector(1)))

	results, err := repo.SearchSimilar(ctx, "acme/widgets", axisVector(0), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "docs/auth.md", results[0].Path)
	assert.Equal(t, "docs/billing.md", results[1].Path)
	assert.Greater(t, results[0].Score, results[1].Score)
	// Identical vectors score 1.0 with the 1/(1+distance) transform.
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
}

func TestSnapshotRepository_SearchSimilar_OtherRepositoryExcluded(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSnapshotRepository(pool)

	snapA := testSnapshot("acme/widgets", testClassification("docs/a.md", 1))
	idsA, err := repo.Replace(ctx, snapA)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateEntryEmbedding(ctx, idsA[0], axisVector(0)))

	snapB := testSnapshot("acme/gadgets", testClassification("docs/b.md", 1))
	idsB, err := repo.Replace(ctx, snapB)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateEntryEmbedding(ctx, idsB[0], axisVector(0)))

	results, err := repo.SearchSimilar(ctx, "acme/widgets", axisVector(0), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "docs/a.md", results[0].Path)
}
