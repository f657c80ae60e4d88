// Package mqttio adapts the Paho MQTT client into the narrow contract
// the automation engine needs: publish, subscribe with an unsubscribe
// handle, and a last-will registration, all addressed by host:port
// with configurable reconnect backoff (§6 MQTT client collaborator).
package mqttio

import "context"

// Message is a decoded MQTT message delivered to a subscription
// handler.
type Message struct {
	Topic   string
	Payload []byte
	Retain  bool
	QoS     byte
}

// Client abstracts the MQTT operations the engine's broker
// collaborator needs: the automation handler subscribes to every
// topic pattern its MQTT-source rules reference, and the
// mqtt-publish action executor publishes through the same client.
type Client interface {
	// Publish should be safe to call from multiple goroutines.
	Publish(ctx context.Context, topic string, payload []byte, retain bool, qos byte) error
	Subscribe(ctx context.Context, topic string, qos byte, handler func(Message)) (unsubscribe func() error, err error)
	SetWill(topic string, payload []byte, retain bool, qos byte) error
}
