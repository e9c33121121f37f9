package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"saldo/internal/log"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/middleware/security"
	"saldo/internal/middleware/trace"
	"saldo/internal/services"
	"saldo/internal/state"
)

// Pinger checks that the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the API serves from.
type Deps struct {
	State        *state.Store
	Transactions *services.TransactionService
	Targets      *services.TargetService
	Exponent     int32
	Logger       *log.Logger
	Limiter      *ratelimit.Limiter // optional; limits writes only
	Store        Pinger             // optional; checked by /readyz
}

// Server wraps http.Server with the JSON API routes.
type Server struct {
	http.Server

	state        *state.Store
	transactions *services.TransactionService
	targets      *services.TargetService
	exponent     int32
	logger       *log.Logger
	limiter      *ratelimit.Limiter
	store        Pinger
	tracer       *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		state:        deps.State,
		transactions: deps.Transactions,
		targets:      deps.Targets,
		exponent:     deps.Exponent,
		logger:       logger,
		limiter:      deps.Limiter,
		store:        deps.Store,
		tracer:       trace.NewMiddleware(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/targets", s.handleListTargets)
	mux.HandleFunc("POST /api/targets", s.handleCreateTarget)
	mux.HandleFunc("POST /api/targets/{id}/complete", s.handleCompleteTarget)
	mux.HandleFunc("DELETE /api/targets/{id}", s.handleDeleteTarget)
	mux.HandleFunc("GET /api/stats/monthly", s.handleMonthlyStats)
	mux.HandleFunc("GET /api/stats/expenses", s.handleExpenseStats)
	mux.HandleFunc("GET /api/categories", handleCategories)

	var handler http.Handler = mux
	if s.limiter != nil {
		clientIP := security.NewClientIP()
		handler = s.limiter.Middleware(clientIP.Extract, s.handleRateLimited,
			http.MethodPost, http.MethodDelete)(handler)
	}
	handler = log.RequestIDMiddleware(trace.FromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.Info("HTTP server stopped", "requests", s.tracer.TotalRequests())
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the first refresh has succeeded and the
// store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.state.Current().Version == 0 {
		writeError(w, r, http.StatusServiceUnavailable, "state not loaded")
		return
	}
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Store ping failed", log.FieldError, err)
			writeError(w, r, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}
