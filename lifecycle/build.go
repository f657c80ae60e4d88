package lifecycle

import (
	"fmt"
	"log/slog"

	"github.com/rustyeddy/sentinel/action"
	"github.com/rustyeddy/sentinel/automation"
	"github.com/rustyeddy/sentinel/condition"
	"github.com/rustyeddy/sentinel/config"
	"github.com/rustyeddy/sentinel/devcontrol"
	"github.com/rustyeddy/sentinel/metrics"
	"github.com/rustyeddy/sentinel/mqttio"
	"github.com/rustyeddy/sentinel/state"
	"github.com/rustyeddy/sentinel/store"
	"github.com/rustyeddy/sentinel/trigger"
)

// buildExecutor compiles one "then" entry into the matching action.Executor
// (§4.5). Config validation has already rejected unknown types and
// malformed device-command targets, so the default case here is
// unreachable in practice.
func buildExecutor(a config.Action, mqttClient mqttio.Client, controller devcontrol.Controller, publisher *metrics.Publisher, logger *slog.Logger) (action.Executor, error) {
	switch a.Type {
	case "log":
		level, err := parseLogLevel(a.Level)
		if err != nil {
			return nil, err
		}
		return &action.Log{Level: level, Message: a.Message, Logger: logger}, nil
	case "shell":
		return &action.Shell{Argv: a.Argv, Logger: logger}, nil
	case "webhook":
		return &action.Webhook{
			URL:     a.URL,
			Method:  a.Method,
			Payload: a.Payload,
			Headers: a.Headers,
			Logger:  logger,
		}, nil
	case "mqtt-publish":
		return &action.MQTTPublish{
			Client:  mqttClient,
			Topic:   a.Topic,
			Payload: a.Payload,
			QoS:     a.QoS,
			Retain:  a.Retain,
			Logger:  logger,
		}, nil
	case "device-command":
		return &action.DeviceCommand{
			Controller: controller,
			Publisher:  publisher,
			Alias:      a.Alias,
			Address:    a.Address,
			Method:     a.Method,
			Params:     a.Params,
			Logger:     logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", a.Type)
	}
}

func parseLogLevel(level string) (slog.Level, error) {
	if level == "" {
		return slog.LevelInfo, nil
	}
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log action level %q", level)
	}
}

// compiledRule is one rule compiled into its Dispatcher plus, for
// duration-sustained rules, the underlying trigger so the graph can
// cancel its pending timers on shutdown or reload (§5, §4.8).
type compiledRule struct {
	rule     config.Rule
	source   automation.Source
	topic    string
	device   string // resolved entity key; empty unless the rule named "if.device"
	runner   *automation.Runner
	dispatch automation.Dispatcher
	duration *trigger.Duration
}

// buildRule compiles one rule's condition block, trigger, and ordered
// executor list (§4.4, §4.5, §4.6).
func buildRule(r config.Rule, aliases state.AliasTable, mqttClient mqttio.Client, controller devcontrol.Controller, publisher *metrics.Publisher, logger *slog.Logger) (*compiledRule, error) {
	executors := make([]action.Executor, 0, len(r.Then))
	for _, a := range r.Then {
		ex, err := buildExecutor(a, mqttClient, controller, publisher, logger)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		executors = append(executors, ex)
	}

	conditions := condition.Map(r.If.Conditions)
	runner := automation.NewRunner(r.Name, nil, executors, r.Cooldown.Std(), logger)

	var source automation.Source
	if r.If.Source == "mqtt-event" {
		source = automation.SourceMQTT
	} else {
		source = automation.SourceBLE
	}

	// A rule that names "if.device" (§3 Rule invariants) only fires for
	// that device's own events -- config.Validate already rejected an
	// unknown alias here, so a miss would mean the alias table passed in
	// doesn't match the one validation ran against.
	var device string
	if r.If.Device != "" {
		key, ok := aliases.Key(r.If.Device)
		if !ok {
			return nil, fmt.Errorf("rule %q: device alias %q not found", r.Name, r.If.Device)
		}
		device = key
	}

	cr := &compiledRule{rule: r, source: source, topic: r.If.Topic, device: device, runner: runner}

	if r.If.HasDuration() {
		dt := trigger.NewDuration(conditions, r.If.Duration.Std(), nil)
		cr.duration = dt
		cr.dispatch = automation.NewDurationRunner(dt, runner, aliases)
		return cr, nil
	}

	edge := trigger.NewEdge(conditions)
	runner.Trigger = edge
	cr.dispatch = runner
	return cr, nil
}

// buildHandler compiles every automation rule in doc and registers it
// on a fresh Handler bound to st and aliases (§4.7).
func buildHandler(doc config.Document, aliases state.AliasTable, st *store.Store, mqttClient mqttio.Client, controller devcontrol.Controller, publisher *metrics.Publisher, logger *slog.Logger) (*automation.Handler, []*trigger.Duration, error) {
	handler := automation.NewHandler(st, aliases, logger)

	var durations []*trigger.Duration
	for _, rule := range doc.Automations {
		cr, err := buildRule(rule, aliases, mqttClient, controller, publisher, logger)
		if err != nil {
			return nil, nil, err
		}
		handler.Register(cr.source, cr.topic, cr.device, cr.dispatch)
		if cr.duration != nil {
			durations = append(durations, cr.duration)
		}
	}
	return handler, durations, nil
}

// mqttTopics returns the distinct subscription patterns every
// mqtt-event rule in doc references, so the graph subscribes once per
// pattern regardless of how many rules share it.
func mqttTopics(doc config.Document) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, rule := range doc.Automations {
		if rule.If.Source != "mqtt-event" || rule.If.Topic == "" {
			continue
		}
		if !seen[rule.If.Topic] {
			seen[rule.If.Topic] = true
			topics = append(topics, rule.If.Topic)
		}
	}
	return topics
}
