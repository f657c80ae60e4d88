package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and parses the YAML document at path, then fills in
// defaults. It does not validate -- callers apply an Overlay (CLI
// flags) first and call Validate once the final document is
// assembled, per §6's precedence: defaults -> config file -> CLI.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read config: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse config: %w", err)
	}
	return doc.WithDefaults(), nil
}

// WithDefaults fills unset fields with the engine's defaults.
func (d Document) WithDefaults() Document {
	if d.Scanner.Cycle == 0 {
		d.Scanner.Cycle = Duration(60 * time.Second)
	}
	if d.Scanner.Duration == 0 {
		d.Scanner.Duration = Duration(10 * time.Second)
	}
	if d.MQTT.Port == 0 {
		d.MQTT.Port = 1883
	}
	if d.MQTT.ReconnectInterval == 0 {
		d.MQTT.ReconnectInterval = Duration(10 * time.Second)
	}
	if d.Prometheus.Port == 0 {
		d.Prometheus.Port = 9090
	}
	d.Logging = d.Logging.WithDefaults()
	return d
}

// Overlay is the CLI-flag surface of §6, applied over the parsed
// document with the highest precedence. A zero value for any field
// means "flag not set, leave the document's value alone"; boolean
// enable/disable flags use pointers so "not set" is distinguishable
// from "set to false".
type Overlay struct {
	Debug bool

	ScannerCycle     time.Duration
	ScannerDuration  time.Duration
	ScannerInterface string

	MQTTEnabled           *bool
	MQTTHost              string
	MQTTPort              int
	MQTTUsername          string
	MQTTPassword          string
	MQTTReconnectInterval time.Duration

	PrometheusEnabled *bool
	PrometheusPort    int

	LogLevel string
}

// Apply layers o over d, honoring §6's "command-line overrides" as
// the highest-precedence layer.
func (o Overlay) Apply(d Document) Document {
	if o.ScannerCycle > 0 {
		d.Scanner.Cycle = Duration(o.ScannerCycle)
	}
	if o.ScannerDuration > 0 {
		d.Scanner.Duration = Duration(o.ScannerDuration)
	}
	if o.ScannerInterface != "" {
		d.Scanner.Interface = o.ScannerInterface
	}

	if o.MQTTEnabled != nil {
		d.MQTT.Enabled = *o.MQTTEnabled
	}
	if o.MQTTHost != "" {
		d.MQTT.Host = o.MQTTHost
	}
	if o.MQTTPort > 0 {
		d.MQTT.Port = o.MQTTPort
	}
	if o.MQTTUsername != "" {
		d.MQTT.Username = o.MQTTUsername
	}
	if o.MQTTPassword != "" {
		d.MQTT.Password = o.MQTTPassword
	}
	if o.MQTTReconnectInterval > 0 {
		d.MQTT.ReconnectInterval = Duration(o.MQTTReconnectInterval)
	}

	if o.PrometheusEnabled != nil {
		d.Prometheus.Enabled = *o.PrometheusEnabled
	}
	if o.PrometheusPort > 0 {
		d.Prometheus.Port = o.PrometheusPort
	}

	if o.LogLevel != "" {
		d.Logging.Level = o.LogLevel
	}
	if o.Debug {
		d.Logging.Level = "debug"
	}

	return d
}
