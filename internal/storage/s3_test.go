//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/testutil"
)

func newTestS3Client(ctx context.Context, t *testing.T) (*S3Client, func()) {
	t.Helper()
	rc := testutil.NewRustFSContainer(ctx, t)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "docsentry-snapshots",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))

	return client, func() { _ = rc.Terminate(ctx) }
}

func TestS3Client_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestS3Client(ctx, t)
	defer cleanup()

	artifact := []byte(`{"version":1,"repository":"acme/widgets","files":[]}`)
	require.NoError(t, client.PutSnapshot(ctx, "acme/widgets", artifact))

	data, err := client.GetSnapshot(ctx, "acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, artifact, data)
}

func TestS3Client_PutOverwritesPrevious(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestS3Client(ctx, t)
	defer cleanup()

	require.NoError(t, client.PutSnapshot(ctx, "acme/widgets", []byte(`{"version":1,"files":["old"]}`)))
	require.NoError(t, client.PutSnapshot(ctx, "acme/widgets", []byte(`{"version":1,"files":["new"]}`)))

	data, err := client.GetSnapshot(ctx, "acme/widgets")
	require.NoError(t, err)
	assert.Contains(t, string(data), "new")
}

func TestS3Client_GetMissingSnapshot(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestS3Client(ctx, t)
	defer cleanup()

	_, err := client.GetSnapshot(ctx, "acme/nothing")
	assert.Error(t, err)
}

func TestS3Client_DeleteSnapshot(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestS3Client(ctx, t)
	defer cleanup()

	require.NoError(t, client.PutSnapshot(ctx, "acme/widgets", []byte(`{}`)))
	require.NoError(t, client.DeleteSnapshot(ctx, "acme/widgets"))

	_, err := client.GetSnapshot(ctx, "acme/widgets")
	assert.Error(t, err)
}
