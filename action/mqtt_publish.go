package action

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rustyeddy/sentinel/mqttio"
	"github.com/rustyeddy/sentinel/placeholder"
	"github.com/rustyeddy/sentinel/state"
)

// MQTTPublish sends a publish request through the lifecycle
// controller's broker client, with formatted topic and payload (map ->
// JSON string; string -> verbatim), and QoS/retain defaults of 0/false
// (§4.5).
type MQTTPublish struct {
	Client mqttio.Client

	Topic   string
	Payload any
	QoS     byte
	Retain  bool

	Logger *slog.Logger
}

func (a *MQTTPublish) Execute(ctx context.Context, obj *state.Object, aliases state.AliasTable) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	warn := func(w string) { logger.Warn(w) }

	if a.Client == nil {
		logger.Warn("mqtt-publish action has no broker client configured")
		return nil
	}

	topic := placeholder.Resolve(a.Topic, obj, aliases, warn)
	resolved := placeholder.ResolveValue(a.Payload, obj, aliases, warn)

	var payload []byte
	switch p := resolved.(type) {
	case string:
		payload = []byte(p)
	case nil:
		payload = nil
	default:
		encoded, err := json.Marshal(p)
		if err != nil {
			logger.Warn("mqtt-publish payload encode failed", "topic", topic, "error", err)
			return nil
		}
		payload = encoded
	}

	if err := a.Client.Publish(ctx, topic, payload, a.Retain, a.QoS); err != nil {
		logger.Warn("mqtt-publish failed", "topic", topic, "error", err)
	}
	return nil
}
