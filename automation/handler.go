package automation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/rustyeddy/sentinel/state"
	"github.com/rustyeddy/sentinel/store"
)

// Dispatcher is the narrow surface AutomationHandler needs from a
// Runner, so duration-triggered rules (which fire asynchronously
// through their own OnFire callback, not through Run) can share the
// same registration path as edge rules.
type Dispatcher interface {
	Run(ctx context.Context, obj *state.Object, aliases state.AliasTable)
}

// registration binds one runner to the source/topic/device it was
// compiled from (§3 Rule invariants: source is one of
// ble-event/mqtt-event; topic required only for mqtt-event; device is
// an optional alias scoping the rule to one entity's own events).
type registration struct {
	source Source
	topic  string // MQTT subscription pattern; empty for BLE rules
	device string // resolved entity key; empty if the rule isn't device-scoped
	runner Dispatcher
}

// Handler is the AutomationHandler of §4.7: it owns the store, the
// alias table, and the full runner set, and routes every raw event
// from a source into whichever runners match.
type Handler struct {
	Store   *store.Store
	Aliases state.AliasTable
	Logger  *slog.Logger

	registrations []registration
}

// NewHandler builds a Handler bound to a store and alias table. Both
// are fixed for the handler's lifetime; a reload builds a new Handler.
func NewHandler(st *store.Store, aliases state.AliasTable, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Store: st, Aliases: aliases, Logger: logger}
}

// Register adds a compiled rule's runner under its source, (for MQTT
// rules) topic pattern, and (if the rule's "if" block named one) the
// device alias it's scoped to resolved to an entity key.
func (h *Handler) Register(source Source, topic, device string, runner Dispatcher) {
	h.registrations = append(h.registrations, registration{source: source, topic: topic, device: device, runner: runner})
}

// Handle implements §4.7 steps 1-4: commit the raw event, build the
// StateObject from the post-commit snapshot, then dispatch to every
// runner whose source (and, for MQTT, topic pattern) matches.
func (h *Handler) Handle(ctx context.Context, evt rawevent.Event) {
	prev, hadPrevious, snap := h.Store.GetAndUpdate(evt)

	var prevObj *state.Object
	if hadPrevious {
		prevObj = state.New(prev, nil, state.Snapshot{})
	}
	obj := state.New(evt, prevObj, snap)

	source := rawKindToSource(evt.Kind)
	for _, reg := range h.registrations {
		if reg.source != source {
			continue
		}
		if source == SourceMQTT && !TopicMatches(reg.topic, evt.Key) {
			continue
		}
		if reg.device != "" && reg.device != evt.Key {
			continue
		}
		reg.runner.Run(ctx, obj, h.Aliases)
	}
}

// TopicMatches reports whether an MQTT topic matches a subscription
// pattern using standard `+`/`#` wildcard semantics (§4.7): `+` matches
// exactly one level, `#` matches the rest of the topic and must be the
// final pattern segment.
func TopicMatches(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	pSegs := strings.Split(pattern, "/")
	tSegs := strings.Split(topic, "/")

	for i, p := range pSegs {
		if p == "#" {
			return true
		}
		if i >= len(tSegs) {
			return false
		}
		if p == "+" {
			continue
		}
		if p != tSegs[i] {
			return false
		}
	}
	return len(pSegs) == len(tSegs)
}
