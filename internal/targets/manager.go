package targets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"saldo/internal/clock"
	"saldo/internal/core"
	"saldo/internal/remote"
)

// Listener receives target lifecycle events after the store accepted them.
type Listener interface {
	TargetCompleted(ctx context.Context, targetID string)
	TargetDeleted(ctx context.Context, targetID string)
}

// NewTarget holds the user-supplied fields of a target. An empty OwnerID
// defaults to the manager's owner.
type NewTarget struct {
	OwnerID      string
	Name         string
	Icon         string
	Color        string
	TargetAmount core.Money
}

// Manager applies create, delete and complete operations for one owner and
// keeps the session's target list in step with the store.
type Manager struct {
	store   remote.TargetStore
	clock   clock.Clock
	ownerID string

	opMu sync.Mutex // serializes mutating operations

	mu        sync.RWMutex
	targets   []core.Target
	listeners []Listener
}

func NewManager(store remote.TargetStore, clk clock.Clock, ownerID string) *Manager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Manager{
		store:   store,
		clock:   clk,
		ownerID: ownerID,
	}
}

// AddListener registers l for completion and deletion events.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Load replaces the session list with the owner's targets from the store.
func (m *Manager) Load(ctx context.Context) error {
	list, err := m.store.ListTargets(ctx, m.ownerID)
	if err != nil {
		return fmt.Errorf("%w: list targets: %w", core.ErrUpstream, err)
	}
	m.mu.Lock()
	m.targets = list
	m.mu.Unlock()
	return nil
}

// Targets returns a copy of the session list.
func (m *Manager) Targets() []core.Target {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.targets)
}

// Ongoing returns the targets that can still be completed.
func (m *Manager) Ongoing() []core.Target {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.Target
	for _, t := range m.targets {
		if t.IsOngoing() {
			out = append(out, t)
		}
	}
	return out
}

// Find looks a target up in the session list.
func (m *Manager) Find(id string) (core.Target, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.targets {
		if t.ID == id {
			return t, true
		}
	}
	return core.Target{}, false
}

// Create validates and persists a new ongoing target.
func (m *Manager) Create(ctx context.Context, nt NewTarget) (core.Target, error) {
	if nt.OwnerID == "" {
		nt.OwnerID = m.ownerID
	}
	t := core.Target{
		OwnerID:      nt.OwnerID,
		Name:         strings.TrimSpace(nt.Name),
		Icon:         nt.Icon,
		Color:        nt.Color,
		TargetAmount: nt.TargetAmount,
		Status:       core.Ongoing,
		CreatedAt:    m.clock.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return core.Target{}, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	created, err := m.store.CreateTarget(ctx, t)
	if err != nil {
		return core.Target{}, fmt.Errorf("%w: create target: %w", core.ErrUpstream, err)
	}

	m.mu.Lock()
	m.targets = append(m.targets, created)
	m.mu.Unlock()
	m.reload(ctx)

	slog.InfoContext(ctx, "Target created",
		"id", created.ID,
		"name", created.Name,
		"target_amount", created.TargetAmount.Minor)
	return created, nil
}

// CreateFromPreset creates a target decorated from the static preset table.
// The "other" preset takes its name from customName.
func (m *Manager) CreateFromPreset(ctx context.Context, presetID int, customName string, amount core.Money) (core.Target, error) {
	preset, ok := core.LookupTargetPreset(presetID)
	if !ok {
		return core.Target{}, fmt.Errorf("%w: unknown target preset %d", core.ErrValidation, presetID)
	}
	name := preset.Label
	if preset.Other {
		name = customName
	}
	return m.Create(ctx, NewTarget{
		Name:         name,
		Icon:         preset.Icon,
		Color:        preset.Color,
		TargetAmount: amount,
	})
}

// Delete removes a target unconditionally.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.store.DeleteTarget(ctx, id); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return fmt.Errorf("%w: target %s", core.ErrNotFound, id)
		}
		return fmt.Errorf("%w: delete target: %w", core.ErrUpstream, err)
	}

	m.mu.Lock()
	m.targets = slices.DeleteFunc(m.targets, func(t core.Target) bool { return t.ID == id })
	m.mu.Unlock()
	m.reload(ctx)

	slog.InfoContext(ctx, "Target deleted", "id", id)
	for _, l := range m.snapshotListeners() {
		l.TargetDeleted(ctx, id)
	}
	return nil
}

// Complete marks a target completed. It requires the target to be ongoing and
// at 100% progress for the supplied balance.
func (m *Manager) Complete(ctx context.Context, id string, balance core.Money) (core.Target, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	t, ok := m.Find(id)
	if !ok {
		m.reload(ctx)
		if t, ok = m.Find(id); !ok {
			return core.Target{}, fmt.Errorf("%w: target %s", core.ErrNotFound, id)
		}
	}
	if t.Status == core.Completed {
		return core.Target{}, fmt.Errorf("%w: target %s is already completed", core.ErrPrecondition, id)
	}
	res, err := Progress(t, balance)
	if err != nil {
		return core.Target{}, err
	}
	if !res.IsComplete {
		return core.Target{}, fmt.Errorf("%w: target %s is at %d%%", core.ErrPrecondition, id, res.Percent)
	}

	status := core.Completed
	now := m.clock.Now().UTC()
	updated, err := m.store.UpdateTarget(ctx, id, remote.TargetPatch{Status: &status, CompletedAt: &now})
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return core.Target{}, fmt.Errorf("%w: target %s", core.ErrNotFound, id)
		}
		return core.Target{}, fmt.Errorf("%w: complete target: %w", core.ErrUpstream, err)
	}

	m.mu.Lock()
	for i := range m.targets {
		if m.targets[i].ID == id {
			m.targets[i] = updated
		}
	}
	m.mu.Unlock()
	m.reload(ctx)

	slog.InfoContext(ctx, "Target completed", "id", id, "name", updated.Name)
	for _, l := range m.snapshotListeners() {
		l.TargetCompleted(ctx, id)
	}
	return updated, nil
}

// reload refreshes the session list after a mutation. The local list was
// already patched, so a failed reload only leaves it less fresh.
func (m *Manager) reload(ctx context.Context) {
	if err := m.Load(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to reload targets after mutation", "error", err)
	}
}

func (m *Manager) snapshotListeners() []Listener {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.listeners)
}
