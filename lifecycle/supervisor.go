package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rustyeddy/sentinel/config"
	"github.com/rustyeddy/sentinel/httpserver"
)

// ShutdownGrace bounds the context Shutdown passes to the running
// generation's Stop. Stop cancels pending duration timers and stops the
// components; executor goroutines already dispatched by a Runner are
// not waited for.
const ShutdownGrace = 10 * time.Second

// Supervisor owns the current component Graph and rebuilds it on
// demand. Only one Graph is ever live; a failed reload leaves the
// previous one running untouched (§4.8 "rollback to last known good").
type Supervisor struct {
	ConfigPath string
	Overlay    config.Overlay

	HTTPServer     *httpserver.Server
	ScannerFactory ScannerFactory
	Logger         *slog.Logger

	mu      sync.Mutex
	current *Graph
}

// NewSupervisor builds a Supervisor bound to a config path and CLI
// overlay. httpServer is shared across every reload generation since
// it owns the listening socket; it must not be rebuilt on reload.
func NewSupervisor(configPath string, overlay config.Overlay, httpServer *httpserver.Server, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		ConfigPath: configPath,
		Overlay:    overlay,
		HTTPServer: httpServer,
		Logger:     logger,
	}
}

func (s *Supervisor) loadDocument() (config.Document, error) {
	doc, err := config.Load(s.ConfigPath)
	if err != nil {
		return config.Document{}, err
	}
	return s.Overlay.Apply(doc), nil
}

// Start loads the config, builds the first component graph, and
// brings it up. A failure here is fatal: there is no prior generation
// to fall back to (§4.8 "fail-fast startup").
func (s *Supervisor) Start(ctx context.Context) error {
	doc, err := s.loadDocument()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	g, err := buildGraph(doc, buildOpts{
		httpServer:     s.HTTPServer,
		scannerFactory: s.ScannerFactory,
		logger:         s.Logger,
	})
	if err != nil {
		return fmt.Errorf("build component graph: %w", err)
	}
	if err := g.Start(ctx); err != nil {
		return fmt.Errorf("start component graph: %w", err)
	}

	s.mu.Lock()
	s.current = g
	s.mu.Unlock()

	s.Logger.Info("sentinel started", "config", s.ConfigPath, "rules", len(doc.Automations))
	return nil
}

// Reload re-reads the config file and, if it parses, validates, and
// starts cleanly, swaps it in as the new generation and tears down the
// old one. Any failure along the way leaves the running generation
// untouched (§4.8 reload-with-rollback).
func (s *Supervisor) Reload(ctx context.Context) error {
	doc, err := s.loadDocument()
	if err != nil {
		s.Logger.Error("reload: config load failed, keeping running configuration", "error", err)
		return err
	}

	next, err := buildGraph(doc, buildOpts{
		httpServer:     s.HTTPServer,
		scannerFactory: s.ScannerFactory,
		logger:         s.Logger,
	})
	if err != nil {
		s.Logger.Error("reload: config invalid, keeping running configuration", "error", err)
		return err
	}
	if err := next.Start(ctx); err != nil {
		s.Logger.Error("reload: failed to start new configuration, keeping running configuration", "error", err)
		return err
	}

	s.mu.Lock()
	prev := s.current
	s.current = next
	s.mu.Unlock()

	if prev != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer cancel()
		if err := prev.Stop(stopCtx); err != nil {
			s.Logger.Warn("reload: previous generation did not stop cleanly", "error", err)
		}
	}

	s.Logger.Info("sentinel reloaded", "config", s.ConfigPath, "rules", len(doc.Automations))
	return nil
}

// Shutdown stops the running generation, bounded by ShutdownGrace.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	g := s.current
	s.current = nil
	s.mu.Unlock()

	if g == nil {
		return nil
	}
	stopCtx, cancel := context.WithTimeout(ctx, ShutdownGrace)
	defer cancel()
	return g.Stop(stopCtx)
}

// Current returns the live component graph, or nil before Start.
func (s *Supervisor) Current() *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Run starts the supervisor then blocks, reloading on SIGHUP and
// shutting down gracefully on SIGINT/SIGTERM (§6 Signals). It returns
// when a shutdown signal has been fully handled.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return s.Shutdown(context.Background())
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				if err := s.Reload(ctx); err != nil {
					s.Logger.Warn("reload failed", "error", err)
				}
			case syscall.SIGINT, syscall.SIGTERM:
				s.Logger.Info("shutting down", "signal", sig.String())
				return s.Shutdown(context.Background())
			}
		}
	}
}
