// Package callback runs the loopback HTTP server that receives the
// QuickBooks OAuth redirect during `billfold connect`.
package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billfold-cli/billfold/internal/domain"
	"github.com/billfold-cli/billfold/internal/infra/realm"
)

// Server handles the OAuth redirect and reports the adopted realm id back
// to the waiting CLI command.
type Server struct {
	store          domain.RealmSource
	adopter        Adopter
	metricsEnabled bool
	done           chan string
}

// Adopter is the adopt-and-normalize operation the redirect triggers.
type Adopter interface {
	Adopt(rawURL string) (cleanURL string, adopted bool, err error)
}

// New creates a callback server around the realm store. The store must
// implement both reading and adoption.
func New(store interface {
	domain.RealmSource
	Adopter
}) *Server {
	return &Server{store: store, adopter: store, done: make(chan string, 1)}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Done delivers the realm id once the redirect has been handled.
func (s *Server) Done() <-chan string { return s.done }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/callback", s.handleCallback)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleCallback adopts the realm id from the redirect's query parameters.
// The id is stripped from the URL before anything echoes it back, so it
// never lands in logs or browser history beyond this one request.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.adopter.Adopt(r.URL.RequestURI()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id, linked := s.store.CurrentID()
	if !linked {
		writeError(w, http.StatusBadRequest, "missing "+realm.RedirectParam+" parameter")
		return
	}

	// Non-blocking: a duplicate redirect must not hang the handler.
	select {
	case s.done <- id:
	default:
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "connected",
		"realm_id": id,
	})
}

// Serve runs the server on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
