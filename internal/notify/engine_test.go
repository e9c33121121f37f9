package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/clock"
	"saldo/internal/core"
)

type recorder struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recorder) Deliver(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recorder) count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Kind == k {
			n++
		}
	}
	return n
}

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func target(id string, amount int64) core.Target {
	return core.Target{
		ID:           id,
		OwnerID:      "owner-1",
		Name:         "Liburan",
		TargetAmount: core.Money{Minor: amount},
		Status:       core.Ongoing,
	}
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *recorder, *clock.Fake) {
	t.Helper()
	rec := &recorder{}
	fake := clock.NewFake(start)
	s := NewSession("owner-1")
	t.Cleanup(s.Close)
	return NewEngine(s, rec, fake, opts...), rec, fake
}

func TestAchievedOncePerSession(t *testing.T) {
	e, rec, fake := newEngine(t)
	ctx := context.Background()
	list := []core.Target{target("t1", 1000)}

	for _, balance := range []int64{500, 1000, 800, 1000} {
		e.Observe(ctx, core.Money{Minor: balance}, list)
	}

	assert.Equal(t, 1, rec.count(KindTargetAchieved))
	assert.Equal(t, 1, rec.count(KindTargetProgress), "no milestone after the target was achieved")
	assert.Equal(t, KindTargetAchieved, rec.sent[len(rec.sent)-1].Kind)
	assert.Equal(t, reminderScheduled, e.session.phaseOf("t1"))

	fake.Advance(DefaultReminderDelay)
	assert.Equal(t, 1, rec.count(KindTargetReminder))
	assert.Equal(t, reminderFired, e.session.phaseOf("t1"))

	e.Observe(ctx, core.Money{Minor: 2000}, list)
	fake.Advance(3 * DefaultReminderDelay)
	assert.Equal(t, 1, rec.count(KindTargetAchieved))
	assert.Equal(t, 1, rec.count(KindTargetReminder))
	assert.Zero(t, fake.Pending())
}

func TestFirstObservationAtHundredNotifies(t *testing.T) {
	e, rec, _ := newEngine(t)
	e.Observe(context.Background(), core.Money{Minor: 5000}, []core.Target{target("t1", 1000)})

	require.Len(t, rec.sent, 1)
	n := rec.sent[0]
	assert.Equal(t, KindTargetAchieved, n.Kind)
	assert.Equal(t, "t1", n.TargetID)
	assert.Equal(t, "owner-1", n.OwnerID)
	assert.Equal(t, start, n.CreatedAt)
	assert.Equal(t, "Target Tercapai! 🎉", n.Title)
	assert.Contains(t, n.Body, `"Liburan"`)
}

func TestReminderDelay(t *testing.T) {
	e, rec, fake := newEngine(t, WithReminderDelay(time.Hour))
	e.Observe(context.Background(), core.Money{Minor: 1000}, []core.Target{target("t1", 1000)})

	fake.Advance(59 * time.Minute)
	assert.Zero(t, rec.count(KindTargetReminder))
	fake.Advance(time.Minute)
	assert.Equal(t, 1, rec.count(KindTargetReminder))
}

func TestReminderCancelledByLifecycleEvents(t *testing.T) {
	for name, event := range map[string]func(*Engine, context.Context, string){
		"completed": (*Engine).TargetCompleted,
		"deleted":   (*Engine).TargetDeleted,
	} {
		t.Run(name, func(t *testing.T) {
			e, rec, fake := newEngine(t)
			ctx := context.Background()
			e.Observe(ctx, core.Money{Minor: 1000}, []core.Target{target("t1", 1000)})
			require.Equal(t, 1, fake.Pending())

			event(e, ctx, "t1")
			assert.Zero(t, fake.Pending())
			assert.Zero(t, e.session.Pending())

			fake.Advance(2 * DefaultReminderDelay)
			assert.Zero(t, rec.count(KindTargetReminder))

			// cancelling again after the fact is a no-op
			event(e, ctx, "t1")
		})
	}
}

func TestCancelAfterFireIsNoop(t *testing.T) {
	e, rec, fake := newEngine(t)
	ctx := context.Background()
	e.Observe(ctx, core.Money{Minor: 1000}, []core.Target{target("t1", 1000)})
	fake.Advance(DefaultReminderDelay)

	e.TargetCompleted(ctx, "t1")
	assert.Equal(t, 1, rec.count(KindTargetReminder))
	assert.Equal(t, phase(0), e.session.phaseOf("t1"))
}

func TestObserveDropsCompletedAndMissingTargets(t *testing.T) {
	e, rec, fake := newEngine(t)
	ctx := context.Background()
	a, b := target("a", 1000), target("b", 1000)
	e.Observe(ctx, core.Money{Minor: 1000}, []core.Target{a, b})
	require.Equal(t, 2, fake.Pending())

	a.Status = core.Completed
	e.Observe(ctx, core.Money{Minor: 1000}, []core.Target{a})
	assert.Zero(t, fake.Pending())

	fake.Advance(DefaultReminderDelay)
	assert.Zero(t, rec.count(KindTargetReminder))
	assert.Equal(t, 2, rec.count(KindTargetAchieved))
}

func TestReappearingTargetIsNotNotifiedTwice(t *testing.T) {
	e, rec, _ := newEngine(t)
	ctx := context.Background()
	list := []core.Target{target("t1", 1000)}

	e.Observe(ctx, core.Money{Minor: 1000}, list)
	e.Observe(ctx, core.Money{Minor: 1000}, nil)
	e.Observe(ctx, core.Money{Minor: 1000}, list)

	assert.Equal(t, 1, rec.count(KindTargetAchieved))
}

func TestProgressMilestones(t *testing.T) {
	e, rec, _ := newEngine(t)
	ctx := context.Background()
	list := []core.Target{target("t1", 1000)}

	for _, balance := range []int64{100, 500, 600, 400, 790, 800, 1000} {
		e.Observe(ctx, core.Money{Minor: balance}, list)
	}

	var bodies []string
	for _, n := range rec.sent {
		if n.Kind == KindTargetProgress {
			bodies = append(bodies, n.Body)
		}
	}
	assert.Equal(t, []string{
		`Target "Liburan" telah mencapai 50%`,
		`Target "Liburan" telah mencapai 75%`,
	}, bodies)
	assert.Equal(t, 1, rec.count(KindTargetAchieved))

	e.Observe(ctx, core.Money{Minor: 0}, nil)
	e.Observe(ctx, core.Money{Minor: 800}, list)
	assert.Equal(t, 2, rec.count(KindTargetProgress), "an achieved target that reappears gets no milestones")
}

func TestDeliveryFailureKeepsTransition(t *testing.T) {
	e, rec, fake := newEngine(t)
	rec.err = errors.New("broker down")
	ctx := context.Background()
	list := []core.Target{target("t1", 1000)}

	e.Observe(ctx, core.Money{Minor: 1000}, list)
	e.Observe(ctx, core.Money{Minor: 1000}, list)

	assert.Equal(t, 1, rec.count(KindTargetAchieved))
	assert.Equal(t, reminderScheduled, e.session.phaseOf("t1"))
	assert.Equal(t, 1, fake.Pending())
}

func TestPreferencesSuppressWithoutRearming(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.TargetAchieved = false
	e, rec, fake := newEngine(t, WithPreferences(prefs))
	ctx := context.Background()
	list := []core.Target{target("t1", 1000)}

	e.Observe(ctx, core.Money{Minor: 1000}, list)
	assert.Empty(t, rec.sent)
	assert.Equal(t, reminderScheduled, e.session.phaseOf("t1"))

	e.SetPreferences(DefaultPreferences())
	e.Observe(ctx, core.Money{Minor: 1000}, list)
	assert.Zero(t, rec.count(KindTargetAchieved))

	fake.Advance(DefaultReminderDelay)
	assert.Equal(t, 1, rec.count(KindTargetReminder), "reminder follows the achieved preference at fire time")
}

func TestInvalidTargetIsSkipped(t *testing.T) {
	e, rec, _ := newEngine(t)
	e.Observe(context.Background(), core.Money{Minor: 1000},
		[]core.Target{target("bad", 0), target("ok", 1000)})

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "ok", rec.sent[0].TargetID)
}

func TestTransactionRecorded(t *testing.T) {
	e, rec, _ := newEngine(t)
	ctx := context.Background()

	e.TransactionRecorded(ctx, core.Transaction{Kind: core.Credit, Amount: core.Money{Minor: 1500000}})
	e.TransactionRecorded(ctx, core.Transaction{Kind: core.Debit, Amount: core.Money{Minor: 25000}})

	require.Len(t, rec.sent, 2)
	assert.Equal(t, "Pemasukan Baru 💰", rec.sent[0].Title)
	assert.Equal(t, "Rp 1.500.000 telah ditambahkan", rec.sent[0].Body)
	assert.Equal(t, "Pengeluaran Baru 💸", rec.sent[1].Title)
	assert.Equal(t, "Rp 25.000 telah dikeluarkan", rec.sent[1].Body)

	prefs := DefaultPreferences()
	prefs.TransactionAlerts = false
	e.SetPreferences(prefs)
	e.TransactionRecorded(ctx, core.Transaction{Kind: core.Credit, Amount: core.Money{Minor: 1}})
	assert.Len(t, rec.sent, 2)
}

func TestLowBalanceOncePerCrossing(t *testing.T) {
	e, rec, _ := newEngine(t, WithLowBalanceThreshold(core.Money{Minor: 100000}))
	ctx := context.Background()

	for _, balance := range []int64{150000, 90000, 50000, 100000, 20000} {
		e.LowBalance(ctx, core.Money{Minor: balance})
	}

	require.Equal(t, 2, rec.count(KindLowBalance))
	assert.Equal(t, "Saldo Anda tinggal Rp 90.000", rec.sent[0].Body)
	assert.Equal(t, "Saldo Anda tinggal Rp 20.000", rec.sent[1].Body)
}

func TestLowBalanceDisabledWithoutThreshold(t *testing.T) {
	e, rec, _ := newEngine(t)
	e.LowBalance(context.Background(), core.Money{Minor: -500})
	assert.Empty(t, rec.sent)
}

func TestSessionCloseCancelsReminders(t *testing.T) {
	e, rec, fake := newEngine(t)
	ctx := context.Background()
	e.Observe(ctx, core.Money{Minor: 1000}, []core.Target{target("t1", 1000)})

	e.session.Close()
	assert.Zero(t, fake.Pending())
	fake.Advance(DefaultReminderDelay)

	e.Observe(ctx, core.Money{Minor: 1000}, []core.Target{target("t2", 1000)})
	e.TransactionRecorded(ctx, core.Transaction{Kind: core.Credit, Amount: core.Money{Minor: 1}})
	assert.Len(t, rec.sent, 1)
}

func TestPreferencesEnabled(t *testing.T) {
	p := Preferences{TargetAchieved: true}
	assert.True(t, p.Enabled(KindTargetAchieved))
	assert.True(t, p.Enabled(KindTargetReminder))
	assert.False(t, p.Enabled(KindTargetProgress))
	assert.False(t, p.Enabled(KindLowBalance))
	assert.False(t, p.Enabled(Kind("unknown")))
}
