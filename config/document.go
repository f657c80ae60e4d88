// Package config loads, validates, and overlays the engine's
// hierarchical configuration document: scanner, mqtt, prometheus,
// logging, devices, and automations (§6 Configuration format), plus
// the CLI-flag overlay of §6's CLI surface.
package config

import (
	"github.com/rustyeddy/sentinel/logging"
)

// Document is the full on-disk configuration, parsed from YAML.
type Document struct {
	Scanner     Scanner      `yaml:"scanner"`
	MQTT        MQTT         `yaml:"mqtt"`
	Prometheus  Prometheus   `yaml:"prometheus"`
	Logging     logging.Config `yaml:"logging"`
	Devices     []Device     `yaml:"devices"`
	Automations []Rule       `yaml:"automations"`
}

// Scanner configures the BLE scanner collaborator's duty cycle (§6).
type Scanner struct {
	Cycle     Duration `yaml:"cycle"`
	Duration  Duration `yaml:"duration"`
	Interface string   `yaml:"interface"`
}

// MQTT configures the MQTT client collaborator (§6).
type MQTT struct {
	Enabled           bool     `yaml:"enabled"`
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	ReconnectInterval Duration `yaml:"reconnect_interval"`
}

// Prometheus configures the metrics publisher sink (§6).
type Prometheus struct {
	Enabled         bool     `yaml:"enabled"`
	Port            int      `yaml:"port"`
	TargetAddresses []string `yaml:"target_addresses"`
	TargetMetrics   []string `yaml:"target_metrics"`
}

// Device is one device alias table entry (§3 Device alias table).
type Device struct {
	Alias   string         `yaml:"alias"`
	Address string         `yaml:"address"`
	Params  map[string]any `yaml:"params"`
}

// Rule is one automation rule (§3 Rule).
type Rule struct {
	Name     string        `yaml:"name"`
	Cooldown Duration      `yaml:"cooldown"`
	If       RuleCondition `yaml:"if"`
	Then     []Action      `yaml:"then"`
}

// RuleCondition is a rule's "if" block (§3 Rule, §4.4).
type RuleCondition struct {
	Source     string            `yaml:"source"` // ble-event | mqtt-event
	Topic      string            `yaml:"topic"`
	Device     string            `yaml:"device"`
	Duration   Duration          `yaml:"duration"`
	Conditions map[string]string `yaml:"conditions"`
}

// HasDuration reports whether this rule is duration-triggered (§3
// invariants: edge if duration absent, duration-sustained otherwise).
func (r RuleCondition) HasDuration() bool {
	return r.Duration.Std() > 0
}

// Action is one action config in a rule's "then" block (§4.5). Only
// the fields relevant to Type are meaningful; unused fields are zero.
type Action struct {
	Type string `yaml:"type"` // log | shell | webhook | mqtt-publish | device-command

	// log
	Level   string `yaml:"level"`
	Message string `yaml:"message"`

	// shell
	Argv []string `yaml:"argv"`

	// webhook
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`

	// webhook (method is also used by device-command, as the device's
	// method name) and shared Payload/Params/Topic/QoS/Retain
	Method  string         `yaml:"method"`
	Payload any            `yaml:"payload"`
	Params  map[string]any `yaml:"params"`

	// mqtt-publish
	Topic  string `yaml:"topic"`
	QoS    byte   `yaml:"qos"`
	Retain bool   `yaml:"retain"`

	// device-command
	Alias   string `yaml:"alias"`
	Address string `yaml:"address"`
}
