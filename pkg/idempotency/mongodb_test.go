package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedtesting "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/testing"
)

func TestMongoRepository(t *testing.T) {
	sharedtesting.SkipIfShort(t)
	ctx := context.Background()

	container, err := sharedtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)
	client, err := container.GetClient(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Disconnect(ctx)
		_ = container.Close(ctx)
	})

	repo := NewMongoRepository(client.Database("tms_test"))
	require.NoError(t, repo.EnsureIndexes(ctx))

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	rec := func(id, user string) *Record {
		return &Record{ID: id, Key: "key-1", UserID: user, Fingerprint: "fp", LockedAt: now, ExpiresAt: now.Add(time.Hour)}
	}

	stored, created, err := repo.Acquire(ctx, rec("r-1", "u-1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "r-1", stored.ID)

	stored, created, err = repo.Acquire(ctx, rec("r-2", "u-1"))
	require.NoError(t, err)
	assert.False(t, created, "same user and key")
	assert.Equal(t, "r-1", stored.ID)
	assert.False(t, stored.IsCompleted())

	_, created, err = repo.Acquire(ctx, rec("r-3", "u-2"))
	require.NoError(t, err)
	assert.True(t, created, "keys are per user")

	require.NoError(t, repo.Complete(ctx, "r-1", Response{StatusCode: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`), CompletedAt: now}))
	stored, _, err = repo.Acquire(ctx, rec("r-4", "u-1"))
	require.NoError(t, err)
	require.True(t, stored.IsCompleted())
	assert.Equal(t, 200, stored.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(stored.Body))

	require.NoError(t, repo.Release(ctx, "r-1"), "completed records stay")
	require.NoError(t, repo.Release(ctx, "r-3"))
	_, created, err = repo.Acquire(ctx, rec("r-5", "u-2"))
	require.NoError(t, err)
	assert.True(t, created, "released key can be taken again")
}
