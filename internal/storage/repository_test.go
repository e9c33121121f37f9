package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
	"saldo/internal/remote"
)

func newRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "saldo.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

var t0 = time.Date(2026, 1, 15, 8, 30, 0, 123456789, time.UTC)

func TestMigrationsApplied(t *testing.T) {
	_, path := newRepo(t)

	version, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	// running again is a no-op
	require.NoError(t, RunMigrations(path))
}

func TestTransactionsRoundTrip(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		OwnerID:        "owner-1",
		Kind:           core.Debit,
		Amount:         core.Money{Minor: 25000},
		CategoryID:     5,
		CategoryLabel:  "Lainnya",
		CategoryDetail: "Parkir",
		CreatedAt:      t0,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.CreateTransaction(ctx, core.Transaction{
		OwnerID: "owner-2", Kind: core.Credit, Amount: core.Money{Minor: 1}, CreatedAt: t0,
	})
	require.NoError(t, err)

	list, err := repo.ListTransactions(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])
	assert.True(t, list[0].CreatedAt.Equal(t0))
}

func TestCreateTransactionValidates(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		OwnerID: "owner-1", Kind: core.Credit, Amount: core.Money{Minor: 0},
	})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestTargetLifecycle(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTarget(ctx, core.Target{
		OwnerID:      "owner-1",
		Name:         "Liburan",
		Icon:         "airplane-outline",
		Color:        "#4CAF50",
		TargetAmount: core.Money{Minor: 5000000},
		CreatedAt:    t0,
	})
	require.NoError(t, err)
	assert.Equal(t, core.Ongoing, created.Status)

	list, err := repo.ListTargets(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])
	assert.True(t, list[0].CompletedAt.IsZero())

	status := core.Completed
	done := t0.Add(48 * time.Hour)
	updated, err := repo.UpdateTarget(ctx, created.ID, remote.TargetPatch{Status: &status, CompletedAt: &done})
	require.NoError(t, err)
	assert.Equal(t, core.Completed, updated.Status)
	assert.True(t, updated.CompletedAt.Equal(done))

	list, err = repo.ListTargets(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, core.Completed, list[0].Status)
	assert.True(t, list[0].CompletedAt.Equal(done))

	require.NoError(t, repo.DeleteTarget(ctx, created.ID))
	list, err = repo.ListTargets(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUnknownTargetIsNotFound(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	err := repo.DeleteTarget(ctx, "missing")
	assert.True(t, errors.Is(err, remote.ErrNotFound), "delete: %v", err)

	name := "x"
	_, err = repo.UpdateTarget(ctx, "missing", remote.TargetPatch{Name: &name})
	assert.True(t, errors.Is(err, remote.ErrNotFound), "update: %v", err)
}

func TestNotificationLog(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	for i, kind := range []string{"target_achieved", "target_reminder"} {
		_, err := repo.RecordNotification(ctx, NotificationRecord{
			OwnerID:     "owner-1",
			Kind:        kind,
			Title:       "title",
			Body:        "body",
			TargetID:    "t1",
			CreatedAt:   t0,
			DeliveredAt: t0.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	list, err := repo.ListNotifications(ctx, "owner-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "target_reminder", list[0].Kind)
	assert.Equal(t, "target_achieved", list[1].Kind)

	list, err = repo.ListNotifications(ctx, "owner-1", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
