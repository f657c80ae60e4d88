package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rustyeddy/sentinel/automation"
	"github.com/rustyeddy/sentinel/blescan"
	"github.com/rustyeddy/sentinel/config"
	"github.com/rustyeddy/sentinel/devcontrol"
	"github.com/rustyeddy/sentinel/httpserver"
	"github.com/rustyeddy/sentinel/metrics"
	"github.com/rustyeddy/sentinel/mqttio"
	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/rustyeddy/sentinel/state"
	"github.com/rustyeddy/sentinel/store"
	"github.com/rustyeddy/sentinel/trigger"
)

// ScannerFactory builds the BLE scanner collaborator for one reload
// generation. The engine never talks to radio hardware directly (§1);
// callers with real hardware inject a factory that returns their own
// blescan.Scanner. The zero value defaults to an inert Mock that never
// advertises, so the engine runs end-to-end against MQTT alone.
type ScannerFactory func(cfg blescan.Config) blescan.Scanner

func defaultScannerFactory(cfg blescan.Config) blescan.Scanner {
	return blescan.NewMock(cfg, func() []rawevent.Event { return nil })
}

// Graph is one fully wired, reload-generation's worth of components:
// the compiled handler, its duration triggers, the broker client and
// its live subscriptions, the scanner, the metrics HTTP server, and
// the device controller (§4.8 "component graph"). Components starts in
// the order they must come up (broker before scanner, since both feed
// the same handler and a rule may depend on either source already
// being live) and stops in reverse.
type Graph struct {
	Doc     config.Document
	Aliases state.AliasTable

	Store      *store.Store
	Handler    *automation.Handler
	Durations  []*trigger.Duration
	Publisher  *metrics.Publisher
	Controller devcontrol.Controller

	components []Component
	started    []Component
	logger     *slog.Logger
}

// buildOpts collects the fixed collaborators a graph needs across
// reloads: the shared metrics HTTP server (never recreated, since a
// reload must not rebind the listening port) and the scanner factory.
type buildOpts struct {
	httpServer     *httpserver.Server
	scannerFactory ScannerFactory
	controller     devcontrol.Controller
	logger         *slog.Logger
}

// buildGraph validates and compiles doc into a Graph. It performs no
// I/O; Start does the actual connecting/subscribing/scanning so a
// failed Start can be rolled back without having mutated shared state
// (§4.8 reload-with-rollback).
func buildGraph(doc config.Document, opts buildOpts) (*Graph, error) {
	aliases, err := config.Validate(doc, config.LogWarning)
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}

	controller := opts.controller
	if controller == nil {
		controller = devcontrol.NewLoggingController()
	}

	st := store.New(aliases)

	var mqttClient mqttio.Client
	var conn *mqttio.Paho
	if doc.MQTT.Enabled {
		conn = mqttio.New(mqttio.Config{
			Host:              doc.MQTT.Host,
			Port:              doc.MQTT.Port,
			Username:          doc.MQTT.Username,
			Password:          doc.MQTT.Password,
			ReconnectInterval: doc.MQTT.ReconnectInterval.Std(),
		})
		mqttClient = conn
	}

	filter := metrics.NewFilter(doc.Prometheus.TargetAddresses, doc.Prometheus.TargetMetrics)
	publisher := metrics.NewPublisher(filter)

	handler, durations, err := buildHandler(doc, aliases, st, mqttClient, controller, publisher, logger)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Doc:        doc,
		Aliases:    aliases,
		Store:      st,
		Handler:    handler,
		Durations:  durations,
		Publisher:  publisher,
		Controller: controller,
		logger:     logger,
	}

	scannerFactory := opts.scannerFactory
	if scannerFactory == nil {
		scannerFactory = defaultScannerFactory
	}
	scanner := scannerFactory(blescan.Config{
		Cycle:     doc.Scanner.Cycle.Std(),
		Duration:  doc.Scanner.Duration.Std(),
		Interface: doc.Scanner.Interface,
	})

	g.components = []Component{
		newMQTTComponent(doc.MQTT.Enabled, conn, mqttClient, mqttTopics(doc), g),
		newScannerComponent(scanner, g),
		newMetricsComponent(doc.Prometheus.Enabled, opts.httpServer),
	}
	return g, nil
}

// Start brings every enabled component up in order; the first failure
// rolls back everything already started, leaving nothing partially up
// (§4.8 "fail-fast startup in dependency order").
func (g *Graph) Start(ctx context.Context) error {
	for _, c := range g.components {
		if !c.Enabled() {
			continue
		}
		if err := c.Start(ctx); err != nil {
			g.stopStarted(ctx)
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		g.started = append(g.started, c)
	}
	return nil
}

// Stop tears the graph down in reverse start order, cancelling every
// pending duration timer first so no stale callback can fire into a
// torn-down handler (§5 shutdown, §4.8 reload).
func (g *Graph) Stop(ctx context.Context) error {
	for _, d := range g.Durations {
		d.CancelAll()
	}
	g.stopStarted(ctx)
	return nil
}

func (g *Graph) stopStarted(ctx context.Context) {
	for i := len(g.started) - 1; i >= 0; i-- {
		c := g.started[i]
		if err := c.Stop(ctx); err != nil {
			g.logger.Warn("component stop failed", "component", c.Name(), "error", err)
		}
	}
	g.started = nil
}

// Components reports every component this generation compiled,
// regardless of whether it is enabled, for status introspection.
func (g *Graph) Components() []Component {
	return g.components
}

// ingest is the single entry point every raw event passes through
// regardless of source: record it for metrics exposition, then hand
// it to the handler for condition/trigger/action dispatch (§4.7).
func (g *Graph) ingest(ctx context.Context, evt rawevent.Event) {
	g.recordMetrics(evt)
	g.Handler.Handle(ctx, evt)
}

func (g *Graph) recordMetrics(evt rawevent.Event) {
	if name, model, ok := g.identityFor(evt.Key); ok {
		g.Publisher.RecordIdentity(evt.Key, name, model)
	}
	for attr, v := range evt.Attributes {
		if f, ok := toFloat(v); ok {
			g.Publisher.RecordAttribute(evt.Key, attr, f)
		}
	}
}

func (g *Graph) identityFor(key string) (name, model string, ok bool) {
	for _, alias := range g.Aliases.Aliases() {
		k, known := g.Aliases.Key(alias)
		if !known || k != key {
			continue
		}
		params, _ := g.Aliases.Params(alias)
		n, _ := params["name"].(string)
		m, _ := params["model"].(string)
		if n == "" && m == "" {
			return "", "", false
		}
		return n, m, true
	}
	return "", "", false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
