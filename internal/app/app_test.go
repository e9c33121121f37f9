package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/clock"
	"saldo/internal/config"
	"saldo/internal/core"
	"saldo/internal/services"
	"saldo/internal/targets"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                    "8081",
		OwnerID:                 "owner-1",
		DataBackend:             "memory",
		ReminderDelay:           time.Hour,
		LowBalanceThreshold:     100000,
		RefreshInterval:         time.Minute,
		NotifyTransactionAlerts: true,
		NotifyTargetProgress:    true,
		NotifyTargetAchieved:    true,
		NotifyLowBalance:        true,
		LogLevel:                "info",
		LogFormat:               "text",
	}
}

func TestAppWiresEngineToState(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	a, err := New(ctx, testConfig(), nil, fake)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.TransactionService.CreateTransaction(ctx, services.NewTransaction{
		Kind: core.Credit, Amount: core.Money{Minor: 2000000}, CategoryID: 1,
	})
	require.NoError(t, err)

	target, err := a.TargetService.Create(ctx, 0, targets.NewTarget{Name: "Motor", TargetAmount: core.Money{Minor: 1000000}})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Session.Pending(), "achieved target schedules a reminder")

	_, err = a.TargetService.Complete(ctx, target.ID)
	require.NoError(t, err)
	assert.Zero(t, a.Session.Pending(), "completion cancels the reminder")

	fake.Advance(2 * time.Hour)
	assert.Zero(t, a.Session.Pending())
}

func TestRefreshEveryUsesAppClock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := clock.NewFake(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	a, err := New(ctx, testConfig(), nil, fake)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.Equal(t, uint64(1), a.State.Current().Version)

	done := make(chan struct{})
	go func() {
		a.RefreshEvery(ctx, time.Minute)
		close(done)
	}()

	for want := uint64(2); want <= 3; want++ {
		require.Eventually(t, func() bool { return fake.Pending() == 1 }, time.Second, time.Millisecond)
		fake.Advance(time.Minute)
		require.Eventually(t, func() bool { return a.State.Current().Version == want }, time.Second, time.Millisecond)
	}

	cancel()
	<-done
	assert.Zero(t, fake.Pending(), "stopping cancels the pending tick")
}

func TestAppSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "saldo.db")

	a, err := New(ctx, cfg, nil, nil)
	require.NoError(t, err)

	_, err = a.TransactionService.CreateTransaction(ctx, services.NewTransaction{
		Kind: core.Credit, Amount: core.Money{Minor: 5000}, CategoryID: 2,
	})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := New(ctx, cfg, nil, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, int64(5000), reopened.State.Current().Snapshot.Balance.Minor)
}

func TestPreferencesFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.NotifyTargetProgress = false

	p := Preferences(cfg)
	assert.True(t, p.TransactionAlerts)
	assert.False(t, p.TargetProgress)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.DataBackend = "sheets"

	_, err := New(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}
