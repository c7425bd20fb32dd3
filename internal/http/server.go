// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"saldo/internal/backend"
	"saldo/internal/core"
	applog "saldo/internal/log"
)

type ownerKey struct{}

type Server struct {
	http.Server
	ledger      *backend.Ledger
	rateLimiter *rateLimiter
	now         func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, ledger *backend.Ledger, logger *applog.Logger) *Server {
	s := &Server{
		ledger:      ledger,
		rateLimiter: newRateLimiter(writesPerMinute),
		now:         time.Now,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(applog.Middleware(logger))
	r.Use(applog.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter.limitWrites)
		r.Use(s.withOwner)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Delete("/categories", s.handleDeleteCategory)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransactions)
		r.Delete("/transactions", s.handleDeleteTransactions)

		r.Get("/dashboard", s.handleDashboard)
	})

	s.Server = http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withOwner resolves the configured owner before any API handler runs.
func (s *Server) withOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := s.ledger.Owners.EnsureOwner(r.Context(), s.ledger.OwnerEmail)
		if err != nil {
			writeError(w, r, "ensure_owner", err)
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey{}, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(ctx context.Context) core.Owner {
	o, _ := ctx.Value(ownerKey{}).(core.Owner)
	return o
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Store.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
