// Package server exposes the latest usage state and Prometheus metrics over
// a local HTTP listener for `copilotmeter watch --listen`.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tnunamak/copilotmeter/internal/display"
	"github.com/tnunamak/copilotmeter/internal/metrics"
)

// StateHolder is a sink that remembers the most recent state.
type StateHolder struct {
	mu    sync.RWMutex
	state display.State
	at    time.Time
	set   bool
}

func (h *StateHolder) Show(s display.State) {
	h.mu.Lock()
	h.state, h.at, h.set = s, time.Now(), true
	h.mu.Unlock()
}

// Latest returns the last state shown and when, or ok=false before the first.
func (h *StateHolder) Latest() (display.State, time.Time, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state, h.at, h.set
}

// Refresher triggers an on-demand refresh.
type Refresher interface {
	Refresh(ctx context.Context) (display.State, bool)
}

// Server serves the state endpoints.
type Server struct {
	holder    *StateHolder
	refresher Refresher
	logger    *zap.Logger
}

func New(holder *StateHolder, refresher Refresher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{holder: holder, refresher: refresher, logger: logger}
}

type stateResponse struct {
	display.State
	Label      string    `json:"label"`
	ReceivedAt time.Time `json:"received_at"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.getState)
		r.Post("/refresh", s.postRefresh)
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getState handles GET /api/state.
func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	st, at, ok := s.holder.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "no refresh has completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: st, Label: st.Label(), ReceivedAt: at})
}

// postRefresh handles POST /api/refresh and waits for the pass to finish.
func (s *Server) postRefresh(w http.ResponseWriter, r *http.Request) {
	st, ok := s.refresher.Refresh(r.Context())
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "refresh abandoned"})
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: st, Label: st.Label(), ReceivedAt: time.Now()})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error during shutdown", zap.Error(err))
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
