package logging

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// Service owns the live logging configuration and reapplies it to
// slog's global default on every change, so a reload generation (or
// an operator's PUT to /logging) takes effect without a process
// restart.
type Service struct {
	mu     sync.Mutex
	cfg    Config
	closer io.Closer
}

// NewService builds a Service from cfg and applies it immediately.
func NewService(cfg Config) (*Service, error) {
	svc := &Service{}
	if err := svc.SetConfig(cfg); err != nil {
		return nil, err
	}
	return svc, nil
}

// Config returns the currently active configuration.
func (s *Service) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetConfig validates cfg, builds a fresh logger from it, installs
// that logger as the slog default, and only then swaps the service's
// bookkeeping -- a bad config never tears down a working logger.
func (s *Service) SetConfig(cfg Config) error {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return err
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	logger, closer, buf, err := Build(cfg)
	if err != nil {
		return err
	}

	ApplyGlobal(logger, level)

	s.mu.Lock()
	oldCloser := s.closer
	cfg.Buffer = buf
	if cfg.Output != "string" {
		cfg.Buffer = nil
	}
	s.cfg = cfg
	s.closer = closer
	s.mu.Unlock()

	if oldCloser != nil {
		_ = oldCloser.Close()
	}

	return nil
}

// ServeHTTP implements the /logging route: GET returns the active
// configuration, PUT replaces it.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Config())
	case http.MethodPut:
		var cfg Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.SetConfig(cfg); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Config())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}
