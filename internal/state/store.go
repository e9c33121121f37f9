// Package state holds the owner's transactions, targets and derived ledger
// snapshot, and refreshes them from the remote store.
package state

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"saldo/internal/cache"
	"saldo/internal/clock"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/remote"
)

// State is an immutable view of the owner's data. Callers must not modify
// the slices.
type State struct {
	Transactions []core.Transaction // canonical order
	Targets      []core.Target      // newest first
	Snapshot     ledger.Snapshot
	Version      uint64 // incremented on every successful refresh
	RefreshedAt  time.Time

	seq uint64 // last refresh request covered by this state
}

// Subscriber is called after every successful refresh. It runs on the
// refreshing goroutine and must not call Refresh.
type Subscriber func(ctx context.Context, s State)

const (
	reportCacheSize = 32
	reportCacheTTL  = time.Hour
	refreshTimeout  = 30 * time.Second
)

// Store owns the current State for one owner. Reads never block on a
// refresh; a refresh swaps the whole state at once.
type Store struct {
	ownerID string
	reader  remote.Reader
	clock   clock.Clock
	logger  *log.Logger

	current  atomic.Pointer[State]
	loading  atomic.Int32
	requests atomic.Uint64
	group    singleflight.Group

	errMu   sync.RWMutex
	lastErr error

	subMu       sync.RWMutex
	subscribers []Subscriber

	monthly  *cache.LRUCache[[]core.MonthTotals]
	expenses *cache.LRUCache[[]core.CategoryAmount]
}

func NewStore(ownerID string, reader remote.Reader, clk clock.Clock, logger *log.Logger) *Store {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = log.Nop()
	}
	s := &Store{
		ownerID:  ownerID,
		reader:   reader,
		clock:    clk,
		logger:   logger.WithComponent(log.ComponentState),
		monthly:  cache.NewLRUCache[[]core.MonthTotals](reportCacheSize, reportCacheTTL, clk),
		expenses: cache.NewLRUCache[[]core.CategoryAmount](reportCacheSize, reportCacheTTL, clk),
	}
	s.current.Store(&State{})
	return s
}

// Caches returns the report caches so a cache.Manager can clean them.
func (s *Store) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.monthly, s.expenses}
}

// Current returns the latest successfully refreshed state. Before the first
// refresh it is the zero state.
func (s *Store) Current() State {
	return *s.current.Load()
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	return s.loading.Load() > 0
}

// Err returns the error of the last refresh, or nil if it succeeded.
func (s *Store) Err() error {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	return s.lastErr
}

// Subscribe registers fn for successful refreshes.
func (s *Store) Subscribe(fn Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Refresh reloads transactions and targets and replaces the state.
//
// Concurrent calls share one fetch. A call made while a fetch is already
// running waits for the next one, so a refresh requested after a write
// always observes it. The shared fetch is detached from the caller's
// cancellation; a cancelled caller stops waiting and gets ctx.Err(). On
// failure the previous state stays current and the returned error wraps
// core.ErrUpstream.
func (s *Store) Refresh(ctx context.Context) error {
	want := s.requests.Add(1)
	for {
		if s.current.Load().seq >= want {
			return nil
		}
		ch := s.group.DoChan(s.ownerID, func() (any, error) {
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
			defer cancel()
			return s.refresh(fctx)
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				return res.Err
			}
			if res.Val.(*State).seq >= want {
				return nil
			}
		}
	}
}

func (s *Store) refresh(ctx context.Context) (*State, error) {
	seq := s.requests.Load()
	s.loading.Add(1)
	defer s.loading.Add(-1)

	var (
		txs  []core.Transaction
		tgts []core.Target
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.reader.ListTransactions(gctx, s.ownerID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		txs = list
		return nil
	})
	g.Go(func() error {
		list, err := s.reader.ListTargets(gctx, s.ownerID)
		if err != nil {
			return fmt.Errorf("list targets: %w", err)
		}
		tgts = list
		return nil
	})
	if err := g.Wait(); err != nil {
		err = fmt.Errorf("%w: refresh: %w", core.ErrUpstream, err)
		s.setErr(err)
		s.logger.WarnContext(ctx, "Refresh failed, keeping previous state",
			log.FieldOwnerID, s.ownerID, log.FieldError, err)
		return nil, err
	}

	sorted := ledger.Sort(txs)
	tgts = slices.Clone(tgts)
	slices.SortStableFunc(tgts, func(a, b core.Target) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	prev := s.current.Load()
	next := &State{
		Transactions: sorted,
		Targets:      tgts,
		Snapshot:     ledger.Fold(sorted),
		Version:      prev.Version + 1,
		RefreshedAt:  s.clock.Now().UTC(),
		seq:          seq,
	}
	s.current.Store(next)
	s.setErr(nil)

	s.logger.DebugContext(ctx, "State refreshed",
		log.FieldVersion, next.Version,
		log.FieldBalance, next.Snapshot.Balance.Minor,
		"transactions", len(sorted),
		"targets", len(tgts))

	s.subMu.RLock()
	subs := slices.Clone(s.subscribers)
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(ctx, *next)
	}
	return next, nil
}

func (s *Store) setErr(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// MonthlyTotals returns income and expense for the last months months of
// the current state, oldest first.
func (s *Store) MonthlyTotals(months int) []core.MonthTotals {
	st := s.current.Load()
	now := s.clock.Now()
	key := fmt.Sprintf("%d:%d:%s", st.Version, months, now.Format("2006-01"))
	if v, ok := s.monthly.Get(key); ok {
		return slices.Clone(v)
	}
	totals := ledger.MonthlyTotals(st.Transactions, now, months)
	s.monthly.Set(key, totals)
	return slices.Clone(totals)
}

// ExpenseDistribution returns the debit share per expense category of the
// current state.
func (s *Store) ExpenseDistribution() []core.CategoryAmount {
	st := s.current.Load()
	key := strconv.FormatUint(st.Version, 10)
	if v, ok := s.expenses.Get(key); ok {
		return slices.Clone(v)
	}
	dist := ledger.ExpenseDistribution(st.Transactions)
	s.expenses.Set(key, dist)
	return slices.Clone(dist)
}
