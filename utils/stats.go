package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
)

// Stats is the process snapshot served on /stats: Go runtime counters
// plus how long this process has been running, for operators diffing
// behavior across a reload without reaching for a separate uptime
// probe.
type Stats struct {
	Goroutines int
	CPUs       int
	UptimeSecs float64
	runtime.MemStats
	GoVersion string
}

// GetStats reads the current runtime counters. Called fresh on every
// /stats request rather than cached, since goroutine/heap counts are
// only meaningful at the moment of the scrape.
func GetStats() *Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &Stats{
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		UptimeSecs: Timestamp().Seconds(),
		MemStats:   m,
		GoVersion:  runtime.Version(),
	}
}

// ServeHTTP implements http.Handler, returning runtime statistics as
// JSON. A nil receiver (registered directly as a route handler rather
// than constructed per request) computes a fresh snapshot on the fly.
func (s *Stats) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := s
	if stats == nil {
		stats = GetStats()
	}

	data, err := json.Marshal(stats)
	if err != nil {
		slog.Error("failed to encode stats", "error", err)
		http.Error(w, "failed to encode stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
