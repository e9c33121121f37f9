package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

func target(amount int64, status core.Status) core.Target {
	return core.Target{ID: "t1", Name: "Rumah", TargetAmount: core.Money{Minor: amount}, Status: status}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		target   core.Target
		balance  int64
		percent  int
		complete bool
	}{
		{"quarter", target(1_000_000, core.Ongoing), 250_000, 25, false},
		{"exact", target(1_000_000, core.Ongoing), 1_000_000, 100, true},
		{"over", target(1_000_000, core.Ongoing), 3_000_000, 100, true},
		{"negative balance", target(1_000_000, core.Ongoing), -500_000, 0, false},
		{"zero balance", target(1_000_000, core.Ongoing), 0, 0, false},
		{"already completed", target(1_000_000, core.Completed), 1_000_000, 100, false},
		{"rounds half up", target(1_000, core.Ongoing), 995, 100, true},
		{"rounds down", target(1_000, core.Ongoing), 994, 99, false},
		{"ninety nine", target(1_000_000, core.Ongoing), 990_000, 99, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Progress(tt.target, core.Money{Minor: tt.balance})
			require.NoError(t, err)
			assert.Equal(t, tt.percent, got.Percent)
			assert.Equal(t, tt.complete, got.IsComplete)
		})
	}
}

func TestProgressInvalidTarget(t *testing.T) {
	_, err := Progress(target(0, core.Ongoing), core.Money{Minor: 10})
	assert.ErrorIs(t, err, core.ErrInvalidTarget)
}

func TestProgressMonotonicAndClamped(t *testing.T) {
	tg := target(777_777, core.Ongoing)
	prev := -1
	for balance := int64(-100_000); balance <= 1_000_000; balance += 7_919 {
		got, err := Progress(tg, core.Money{Minor: balance})
		require.NoError(t, err)
		require.GreaterOrEqual(t, got.Percent, 0)
		require.LessOrEqual(t, got.Percent, 100)
		require.GreaterOrEqual(t, got.Percent, prev, "balance %d", balance)
		prev = got.Percent
	}
	assert.Equal(t, 100, prev)
}
