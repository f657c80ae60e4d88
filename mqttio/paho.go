package mqttio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config describes how to reach and authenticate against a broker, and
// how aggressively to retry a lost connection. Port defaults to the
// broker's standard plaintext listener (§6: "default port 1883");
// Host has no default.
type Config struct {
	Host     string
	Port     int
	ClientID string // if empty, randomly generated
	Username string
	Password string

	// ReconnectInterval caps the backoff Paho waits between reconnect
	// attempts after an unexpected disconnect (§6 reconnect_interval).
	ReconnectInterval time.Duration

	CleanSession bool
}

// WithDefaults fills Port and ReconnectInterval when unset.
func (c Config) WithDefaults() Config {
	if c.Port == 0 {
		c.Port = 1883
	}
	if c.ReconnectInterval == 0 {
		c.ReconnectInterval = 10 * time.Second
	}
	return c
}

// Paho wraps an eclipse/paho.mqtt.golang client behind the Client
// interface, the engine's only view of the broker.
type Paho struct {
	opts *paho.ClientOptions
	c    paho.Client

	onConnect func()
}

// New constructs a Paho client from cfg. Connect must be called before
// Publish/Subscribe have any effect; SetWill only takes effect when
// called before the first Connect.
func New(cfg Config) *Paho {
	cfg = cfg.WithDefaults()
	id := cfg.ClientID
	if id == "" {
		id = "sentinel-" + randSuffix()
	}

	broker := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(id).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(cfg.ReconnectInterval).
		SetConnectTimeout(10 * time.Second).
		SetCleanSession(cfg.CleanSession)

	p := &Paho{opts: opts}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		slog.Warn("mqtt disconnected", "error", err)
	})

	opts.OnConnect = func(_ paho.Client) {
		slog.Info("mqtt connected", "broker", broker)
		if p.onConnect != nil {
			p.onConnect()
		}
	}

	return p
}

func randSuffix() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// SetOnConnect registers a callback invoked every time the client
// connects or reconnects. The lifecycle package does not register one.
func (p *Paho) SetOnConnect(fn func()) {
	p.onConnect = fn
}

// Connect dials the broker and blocks until the connection completes
// or a fixed 15-second timeout expires; ctx is not consulted.
func (p *Paho) Connect(ctx context.Context) error {
	if p.c == nil {
		p.c = paho.NewClient(p.opts)
	}
	tok := p.c.Connect()
	if !tok.WaitTimeout(15 * time.Second) {
		return errors.New("mqtt connect timeout")
	}
	return tok.Error()
}

// Disconnect cleanly closes the connection, waiting up to quiesce for
// in-flight work to drain.
func (p *Paho) Disconnect(quiesce uint) {
	if p.c != nil && p.c.IsConnected() {
		p.c.Disconnect(quiesce)
	}
}

func (p *Paho) SetWill(topic string, payload []byte, retain bool, qos byte) error {
	if p.opts == nil {
		return errors.New("mqtt options not initialized")
	}
	p.opts.SetWill(topic, string(payload), qos, retain)
	return nil
}

func (p *Paho) Publish(ctx context.Context, topic string, payload []byte, retain bool, qos byte) error {
	tok := p.c.Publish(topic, qos, retain, payload)
	if qos > 0 {
		if !tok.WaitTimeout(5 * time.Second) {
			return errors.New("mqtt publish timeout")
		}
	}
	return tok.Error()
}

func (p *Paho) Subscribe(ctx context.Context, topic string, qos byte, handler func(Message)) (func() error, error) {
	tok := p.c.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		handler(Message{
			Topic:   msg.Topic(),
			Payload: msg.Payload(),
			Retain:  msg.Retained(),
			QoS:     msg.Qos(),
		})
	})
	if !tok.WaitTimeout(10 * time.Second) {
		return nil, errors.New("mqtt subscribe timeout")
	}
	if tok.Error() != nil {
		return nil, tok.Error()
	}

	return func() error {
		ut := p.c.Unsubscribe(topic)
		if !ut.WaitTimeout(10 * time.Second) {
			return errors.New("mqtt unsubscribe timeout")
		}
		return ut.Error()
	}, nil
}
