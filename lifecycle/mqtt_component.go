package lifecycle

import (
	"context"
	"fmt"

	"github.com/rustyeddy/sentinel/mqttio"
	"github.com/rustyeddy/sentinel/rawevent"
)

// mqttComponent owns the broker connection and every live subscription
// for one graph generation (§6 "MQTT client collaborator").
type mqttComponent struct {
	baseComponent

	conn   *mqttio.Paho
	client mqttio.Client
	topics []string
	graph  *Graph

	unsubscribes []func() error
}

func newMQTTComponent(enabled bool, conn *mqttio.Paho, client mqttio.Client, topics []string, graph *Graph) *mqttComponent {
	return &mqttComponent{
		baseComponent: baseComponent{name: "mqtt", enabled: enabled},
		conn:          conn,
		client:        client,
		topics:        topics,
		graph:         graph,
	}
}

func (c *mqttComponent) Start(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Connect(ctx); err != nil {
		return err
	}
	for _, topic := range c.topics {
		unsub, err := c.client.Subscribe(ctx, topic, 0, c.handle(ctx))
		if err != nil {
			c.Stop(ctx)
			return fmt.Errorf("subscribe %q: %w", topic, err)
		}
		c.unsubscribes = append(c.unsubscribes, unsub)
	}
	c.setRunning(true)
	return nil
}

func (c *mqttComponent) handle(ctx context.Context) func(mqttio.Message) {
	return func(msg mqttio.Message) {
		c.graph.ingest(ctx, rawevent.NewMQTT(msg.Topic, msg.Payload))
	}
}

func (c *mqttComponent) Stop(ctx context.Context) error {
	var firstErr error
	for _, unsub := range c.unsubscribes {
		if err := unsub(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.unsubscribes = nil
	if c.conn != nil {
		c.conn.Disconnect(250)
	}
	c.setRunning(false)
	return firstErr
}
