// Package app assembles the backend, state store, target manager and
// notification engine for one owner.
package app

import (
	"context"
	"fmt"
	"time"

	"saldo/internal/backend"
	"saldo/internal/cache"
	"saldo/internal/clock"
	"saldo/internal/config"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/notify"
	"saldo/internal/services"
	"saldo/internal/state"
	"saldo/internal/targets"
)

type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Backend *backend.BackendResult

	State   *state.Store
	Targets *targets.Manager
	Session *notify.Session
	Engine  *notify.Engine
	Caches  *cache.Manager

	TransactionService *services.TransactionService
	TargetService      *services.TargetService

	clock clock.Clock
}

// LoggerFromConfig builds the process logger and installs it as the slog
// default.
func LoggerFromConfig(cfg *config.Config) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// Preferences returns the notification preferences configured in cfg.
func Preferences(cfg *config.Config) notify.Preferences {
	return notify.Preferences{
		TransactionAlerts: cfg.NotifyTransactionAlerts,
		TargetProgress:    cfg.NotifyTargetProgress,
		TargetAchieved:    cfg.NotifyTargetAchieved,
		LowBalance:        cfg.NotifyLowBalance,
	}
}

// New opens the configured backend and wires the session. A failed
// initial load is logged; the first Refresh retries it.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger, clk clock.Clock) (*App, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if err := core.ValidateCategories(); err != nil {
		return nil, fmt.Errorf("category tables: %w", err)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	exponent := int32(cfg.CurrencyExponent)
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Backend: res,
		State:   state.NewStore(cfg.OwnerID, res.Store, clk, logger),
		Targets: targets.NewManager(res.Store, clk, cfg.OwnerID),
		Session: notify.NewSession(cfg.OwnerID),
		Caches:  cache.NewManager(logger),
		clock:   clk,
	}
	a.Engine = notify.NewEngine(a.Session, res.Notifier, clk,
		notify.WithReminderDelay(cfg.ReminderDelay),
		notify.WithLowBalanceThreshold(core.Money{Minor: cfg.LowBalanceThreshold}),
		notify.WithCurrencyExponent(exponent),
		notify.WithPreferences(Preferences(cfg)),
		notify.WithLogger(logger),
	)
	a.Targets.AddListener(a.Engine)
	a.State.Subscribe(func(ctx context.Context, st state.State) {
		a.Engine.Observe(ctx, st.Snapshot.Balance, st.Targets)
		a.Engine.LowBalance(ctx, st.Snapshot.Balance)
	})
	for _, c := range a.State.Caches() {
		a.Caches.Register(c)
	}

	a.TransactionService = services.NewTransactionService(res.Store, a.State, a.Engine, clk, cfg.OwnerID, logger)
	a.TargetService = services.NewTargetService(a.Targets, a.State, logger)

	if err := a.Targets.Load(ctx); err != nil {
		logger.Warn("Initial target load failed", log.FieldError, err)
	}
	if err := a.State.Refresh(ctx); err != nil {
		logger.Warn("Initial refresh failed", log.FieldError, err)
	}

	logger.Info("Session started",
		log.FieldSessionID, a.Session.ID(),
		log.FieldOwnerID, cfg.OwnerID,
		"backend", cfg.DataBackend)
	return a, nil
}

// RefreshEvery refreshes state every interval on the app's clock until ctx
// is done.
func (a *App) RefreshEvery(ctx context.Context, interval time.Duration) {
	for {
		fired := make(chan struct{})
		timer := a.clock.AfterFunc(interval, func() { close(fired) })
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-fired:
			if err := a.State.Refresh(ctx); err != nil {
				a.Logger.Warn("Periodic refresh failed", log.FieldError, err)
			}
		}
	}
}

// Close ends the notification session and releases the backend.
func (a *App) Close() error {
	a.Session.Close()
	return a.Backend.Close()
}
