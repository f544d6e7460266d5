// Package server exposes the engine over HTTP, streaming events as Server-Sent Events.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kk-code-lab/rscan/internal/engine"
	"github.com/kk-code-lab/rscan/internal/logging"
)

// Server routes HTTP requests to an Engine and fans its events out to SSE clients.
type Server struct {
	engine    *engine.Engine
	events    *engine.Broadcaster
	logger    *logging.Logger
	keepAlive time.Duration
	router    *mux.Router
}

// New builds the router. events must be the sink eng emits to.
func New(eng *engine.Engine, events *engine.Broadcaster, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Noop()
	}
	s := &Server{
		engine:    eng,
		events:    events,
		logger:    logger.WithComponent("http"),
		keepAlive: 15 * time.Second,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(s.logger), requestMetrics)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search/name", s.startNameSearch).Methods(http.MethodPost)
	api.HandleFunc("/search/name", s.nameSearch).Methods(http.MethodGet)
	api.HandleFunc("/search/content", s.startContentSearch).Methods(http.MethodPost)
	api.HandleFunc("/enumerate", s.enumerate).Methods(http.MethodPost)
	api.HandleFunc("/operations/{id:[0-9]+}", s.cancel).Methods(http.MethodDelete)
	api.HandleFunc("/events", s.streamEvents).Methods(http.MethodGet)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully and
// closes the event stream.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// SSE handlers return once their subscription channel is closed.
	s.events.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.engine.Wait()
	return nil
}
