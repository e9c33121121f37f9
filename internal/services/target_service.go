package services

import (
	"context"

	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/state"
	"saldo/internal/targets"
)

// TargetView is a target with its progress at the current balance.
type TargetView struct {
	core.Target
	Progress targets.Result
}

// TargetService runs target lifecycle operations against the current
// balance and refreshes state afterwards.
type TargetService struct {
	manager *targets.Manager
	state   *state.Store
	logger  *log.Logger
}

func NewTargetService(manager *targets.Manager, st *state.Store, logger *log.Logger) *TargetService {
	if logger == nil {
		logger = log.Nop()
	}
	return &TargetService{
		manager: manager,
		state:   st,
		logger:  logger.WithComponent(log.ComponentTargets),
	}
}

// List returns the targets of the current state with their progress.
// Targets with an invalid amount are reported at 0%.
func (s *TargetService) List() []TargetView {
	st := s.state.Current()
	out := make([]TargetView, 0, len(st.Targets))
	for _, t := range st.Targets {
		res, err := targets.Progress(t, st.Snapshot.Balance)
		if err != nil {
			s.logger.Warn("Invalid target in state", log.FieldTargetID, t.ID, log.FieldError, err)
		}
		out = append(out, TargetView{Target: t, Progress: res})
	}
	return out
}

// Create adds a target. A positive presetID takes name, icon and color
// from the preset table; name is then only used for the "other" preset.
func (s *TargetService) Create(ctx context.Context, presetID int, nt targets.NewTarget) (core.Target, error) {
	var (
		t   core.Target
		err error
	)
	if presetID > 0 {
		t, err = s.manager.CreateFromPreset(ctx, presetID, nt.Name, nt.TargetAmount)
	} else {
		t, err = s.manager.Create(ctx, nt)
	}
	if err != nil {
		return core.Target{}, err
	}
	s.refresh(ctx)
	return t, nil
}

// Complete marks a target completed if the current balance covers it.
func (s *TargetService) Complete(ctx context.Context, id string) (core.Target, error) {
	t, err := s.manager.Complete(ctx, id, s.state.Current().Snapshot.Balance)
	if err != nil {
		return core.Target{}, err
	}
	s.refresh(ctx)
	return t, nil
}

func (s *TargetService) Delete(ctx context.Context, id string) error {
	if err := s.manager.Delete(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx)
	return nil
}

func (s *TargetService) refresh(ctx context.Context) {
	if err := s.state.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "Refresh after target change failed", log.FieldError, err)
	}
}
