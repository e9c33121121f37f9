package notify

import (
	"context"
	"time"

	"saldo/internal/clock"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/targets"
)

// DefaultReminderDelay is the delay between the achieved notification and
// the completion reminder.
const DefaultReminderDelay = 24 * time.Hour

// DefaultMilestones are the progress percentages announced before 100.
var DefaultMilestones = []int{50, 75}

// Engine turns balance observations and lifecycle events into notifications
// for one session.
type Engine struct {
	session  *Session
	notifier Notifier
	clock    clock.Clock
	logger   *log.Logger

	reminderDelay time.Duration
	lowBalance    core.Money
	exponent      int32
	milestones    []int
	prefs         Preferences // guarded by session.mu
}

var _ targets.Listener = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

func WithReminderDelay(d time.Duration) Option {
	return func(e *Engine) { e.reminderDelay = d }
}

// WithLowBalanceThreshold enables the low balance warning below threshold.
func WithLowBalanceThreshold(threshold core.Money) Option {
	return func(e *Engine) { e.lowBalance = threshold }
}

func WithCurrencyExponent(exponent int32) Option {
	return func(e *Engine) { e.exponent = exponent }
}

func WithPreferences(p Preferences) Option {
	return func(e *Engine) { e.prefs = p }
}

// WithMilestones sets the progress percentages announced before 100. An
// empty list disables progress notifications.
func WithMilestones(m ...int) Option {
	return func(e *Engine) { e.milestones = m }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(session *Session, notifier Notifier, clk clock.Clock, opts ...Option) *Engine {
	if clk == nil {
		clk = clock.Real{}
	}
	e := &Engine{
		session:       session,
		notifier:      notifier,
		clock:         clk,
		logger:        log.Nop(),
		reminderDelay: DefaultReminderDelay,
		milestones:    DefaultMilestones,
		prefs:         DefaultPreferences(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent(log.ComponentNotify).With(log.FieldSessionID, session.ID())
	return e
}

// Preferences returns the current notification preferences.
func (e *Engine) Preferences() Preferences {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	return e.prefs
}

// SetPreferences replaces the notification preferences for the session.
func (e *Engine) SetPreferences(p Preferences) {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	e.prefs = p
}

// Observe evaluates every ongoing target against a new balance. A target
// reaching 100% for the first time in the session produces one achieved
// notification and schedules one reminder. Completed targets and targets
// missing from the list stop being tracked.
func (e *Engine) Observe(ctx context.Context, balance core.Money, list []core.Target) {
	s := e.session
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	var out []Notification
	present := make(map[string]bool, len(list))
	for _, t := range list {
		if !t.IsOngoing() {
			s.dropLocked(t.ID)
			continue
		}
		present[t.ID] = true

		res, err := targets.Progress(t, balance)
		if err != nil {
			e.logger.WarnContext(ctx, "Skipping target with invalid amount",
				log.FieldTargetID, t.ID, log.FieldError, err)
			continue
		}

		w, ok := s.tracked[t.ID]
		if !ok {
			w = &watch{phase: watching}
			s.tracked[t.ID] = w
		}
		w.name = t.Name

		if res.Percent < 100 {
			// No progress messages once the target was achieved this session.
			if s.achieved[t.ID] {
				continue
			}
			if m := e.milestoneFor(res.Percent); m > w.milestone {
				w.milestone = m
				title, body := progressMessage(t.Name, m)
				out = e.appendLocked(out, KindTargetProgress, t.ID, title, body)
			}
			continue
		}
		if w.phase != watching || s.achieved[t.ID] {
			continue
		}

		s.achieved[t.ID] = true
		w.phase = notified
		w.milestone = 100
		title, body := achievedMessage(t.Name)
		out = e.appendLocked(out, KindTargetAchieved, t.ID, title, body)
		e.scheduleReminderLocked(t.ID, w)
	}
	for id := range s.tracked {
		if !present[id] {
			s.dropLocked(id)
		}
	}
	s.mu.Unlock()

	e.deliverAll(ctx, out)
}

// TargetCompleted cancels the target's reminder and stops tracking it.
func (e *Engine) TargetCompleted(ctx context.Context, targetID string) {
	e.forget(ctx, targetID, "completed")
}

// TargetDeleted cancels the target's reminder and stops tracking it.
func (e *Engine) TargetDeleted(ctx context.Context, targetID string) {
	e.forget(ctx, targetID, "deleted")
}

// TransactionRecorded sends the alert for a newly recorded transaction.
func (e *Engine) TransactionRecorded(ctx context.Context, tx core.Transaction) {
	s := e.session
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	title, body := transactionMessage(tx, e.exponent)
	out := e.appendLocked(nil, KindTransactionAlert, "", title, body)
	s.mu.Unlock()

	e.deliverAll(ctx, out)
}

// LowBalance warns once when the balance drops below the configured
// threshold. The warning is re-armed once the balance is back at or above
// the threshold.
func (e *Engine) LowBalance(ctx context.Context, balance core.Money) {
	if e.lowBalance.Minor <= 0 {
		return
	}
	s := e.session
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if balance.Minor >= e.lowBalance.Minor {
		s.lowBalanceSent = false
		s.mu.Unlock()
		return
	}
	if s.lowBalanceSent {
		s.mu.Unlock()
		return
	}
	s.lowBalanceSent = true
	title, body := lowBalanceMessage(balance, e.exponent)
	out := e.appendLocked(nil, KindLowBalance, "", title, body)
	s.mu.Unlock()

	e.deliverAll(ctx, out)
}

func (e *Engine) forget(ctx context.Context, targetID, reason string) {
	s := e.session
	s.mu.Lock()
	_, tracked := s.tracked[targetID]
	s.dropLocked(targetID)
	s.mu.Unlock()
	if tracked {
		e.logger.DebugContext(ctx, "Stopped tracking target",
			log.FieldTargetID, targetID, "reason", reason)
	}
}

func (e *Engine) scheduleReminderLocked(id string, w *watch) {
	w.phase = reminderScheduled
	w.timer = e.clock.AfterFunc(e.reminderDelay, func() {
		e.fireReminder(id, w)
	})
}

func (e *Engine) fireReminder(id string, w *watch) {
	s := e.session
	s.mu.Lock()
	if s.closed || s.tracked[id] != w || w.phase != reminderScheduled {
		s.mu.Unlock()
		return
	}
	w.phase = reminderFired
	w.timer = nil
	title, body := reminderMessage(w.name)
	out := e.appendLocked(nil, KindTargetReminder, id, title, body)
	s.mu.Unlock()

	e.deliverAll(context.Background(), out)
}

func (e *Engine) milestoneFor(percent int) int {
	best := 0
	for _, m := range e.milestones {
		if m < 100 && percent >= m && m > best {
			best = m
		}
	}
	return best
}

// appendLocked adds a notification to out unless its kind is disabled.
func (e *Engine) appendLocked(out []Notification, kind Kind, targetID, title, body string) []Notification {
	if !e.prefs.Enabled(kind) {
		e.logger.Debug("Notification suppressed by preferences",
			log.FieldNotifyKind, string(kind), log.FieldTargetID, targetID)
		return out
	}
	return append(out, Notification{
		Kind:      kind,
		Title:     title,
		Body:      body,
		OwnerID:   e.session.ownerID,
		TargetID:  targetID,
		CreatedAt: e.clock.Now().UTC(),
	})
}

func (e *Engine) deliverAll(ctx context.Context, list []Notification) {
	for _, n := range list {
		if err := e.notifier.Deliver(ctx, n); err != nil {
			e.logger.WarnContext(ctx, "Notification delivery failed",
				log.FieldNotifyKind, string(n.Kind),
				log.FieldTargetID, n.TargetID,
				log.FieldError, err)
			continue
		}
		e.logger.DebugContext(ctx, "Notification delivered",
			log.FieldNotifyKind, string(n.Kind), log.FieldTargetID, n.TargetID)
	}
}
