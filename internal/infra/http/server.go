package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-forward-bot/internal/domain/ports/repository"
	"telegram-forward-bot/internal/infra/logging"
)

// Server exposes health, metrics and the run audit log for operators.
type Server struct {
	runs   repository.ForwardRunRepository
	auth   *AuthManager
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(port int, runs repository.ForwardRunRepository, auth *AuthManager, log *zerolog.Logger) *Server {
	s := &Server{runs: runs, auth: auth, log: log}

	r := chi.NewRouter()
	r.Use(s.requestLog)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/runs", s.handleRuns)
	})

	s.server = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: r}
	return s
}

func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requestLog stamps every request with a trace id and logs it.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), ulid.Make().String())
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		l := logging.With(ctx, s.log)
		l.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		http.Error(w, "run log not configured", http.StatusNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	runs, err := s.runs.ListRecent(ctx, 50)
	if err != nil {
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runs)
}
