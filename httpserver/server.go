// Package httpserver is the engine's lightweight HTTP surface: a
// dedup-safe handler registry wrapping the standard library's
// http.Server, used to host the metrics scrape endpoint (§6 "Metrics
// publisher") and a liveness probe.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
)

// Server serves HTTP on Addr (default ":9090", the prometheus
// exporter's default port). It tracks every registered path so
// Register can be called idempotently by reload without double
// registering the same route on net/http's mux, which panics on
// duplicate registration.
type Server struct {
	*http.Server   `json:"-"`
	*http.ServeMux `json:"-"`

	EndPoints sync.Map `json:"routes"`
}

// NewServer returns a Server bound to addr (":9090" if empty).
func NewServer(addr string) *Server {
	if addr == "" {
		addr = ":9090"
	}
	s := &Server{
		Server: &http.Server{Addr: addr},
	}
	s.ServeMux = http.NewServeMux()
	return s
}

// Register binds h to path. A second Register call for an
// already-registered path is a no-op, so reload can re-register the
// component set without panicking on net/http's duplicate-pattern
// check.
func (s *Server) Register(path string, h http.Handler) error {
	if path == "" || h == nil {
		return errors.New("httpserver: Register requires a non-empty path and non-nil handler")
	}
	if _, already := s.EndPoints.Load(path); already {
		return nil
	}
	s.EndPoints.Store(path, h)
	s.Handle(path, h)
	return nil
}

// Start registers the built-in routes, begins serving, and blocks
// until done is closed, then shuts down gracefully.
func (s *Server) Start(done <-chan struct{}) {
	s.Register("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	s.Register("/routes", s)

	slog.Info("starting http server", "addr", s.Addr)
	s.Server.Handler = s.ServeMux
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server exited", "error", err)
		}
	}()
	<-done
	s.Shutdown(context.Background())
}

// EndPointCount reports how many distinct paths are registered.
func (s *Server) EndPointCount() int {
	count := 0
	s.EndPoints.Range(func(k, v any) bool {
		count++
		return true
	})
	return count
}

// ServeHTTP lists every registered route as JSON, used by /routes for
// operational visibility into what this reload generation exposes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var routes struct {
		Routes []string `json:"Routes"`
	}
	s.EndPoints.Range(func(k, v any) bool {
		routes.Routes = append(routes.Routes, k.(string))
		return true
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(routes); err != nil {
		slog.Error("httpserver: failed to encode route list", "error", err)
	}
}
