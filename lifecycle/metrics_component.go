package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/rustyeddy/sentinel/httpserver"
	"github.com/rustyeddy/sentinel/metrics"
	"github.com/rustyeddy/sentinel/utils"
)

// heartbeatInterval is how often the metrics component logs an uptime
// heartbeat while enabled, using the teacher's named-ticker registry.
const heartbeatInterval = 5 * time.Minute

// metricsComponent registers the scrape endpoint on the shared HTTP
// server (§6 "Metrics publisher: read-only scrape endpoint") and logs
// a periodic uptime heartbeat. The server itself is never owned here
// -- it is started once for the process's lifetime, independent of
// reload generations.
type metricsComponent struct {
	baseComponent

	server *httpserver.Server
	ticker *utils.Ticker
}

func newMetricsComponent(enabled bool, server *httpserver.Server) *metricsComponent {
	return &metricsComponent{
		baseComponent: baseComponent{name: "metrics", enabled: enabled},
		server:        server,
	}
}

func (c *metricsComponent) Start(ctx context.Context) error {
	if c.server != nil {
		if err := c.server.Register("/metrics", metrics.Handler()); err != nil {
			return err
		}
	}
	c.ticker = utils.NewTicker("metrics-heartbeat", heartbeatInterval, func(time.Time) {
		slog.Info("heartbeat", "uptime", utils.Timestamp())
	})
	c.setRunning(true)
	return nil
}

// Stop cancels the heartbeat ticker. The /metrics route itself stays
// registered on the shared server across reloads (Register is
// idempotent, and the underlying prometheus registry is process-global
// regardless of which graph generation is currently live).
func (c *metricsComponent) Stop(ctx context.Context) error {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.setRunning(false)
	return nil
}
