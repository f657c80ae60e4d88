package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
scanner:
  cycle: 30s
  duration: 5s
  interface: hci0
mqtt:
  enabled: true
  host: broker.local
  port: 1883
  reconnect_interval: 15s
prometheus:
  enabled: true
  port: 9100
devices:
  - alias: porch-light
    address: "aa:bb:cc:dd:ee:ff"
    params:
      channel: "1"
automations:
  - name: motion-lights-on
    cooldown: 5m
    if:
      source: ble-event
      conditions:
        motion_detected: "true"
    then:
      - type: log
        message: "motion detected"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadParsesDocument(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, doc.Scanner.Cycle.Std())
	assert.Equal(t, "broker.local", doc.MQTT.Host)
	assert.True(t, doc.MQTT.Enabled)
	assert.Equal(t, 9100, doc.Prometheus.Port)
	require.Len(t, doc.Devices, 1)
	assert.Equal(t, "porch-light", doc.Devices[0].Alias)
	require.Len(t, doc.Automations, 1)
	assert.Equal(t, 5*time.Minute, doc.Automations[0].Cooldown.Std())
}

func TestLoadDefaultsFillUnsetFields(t *testing.T) {
	path := writeTempConfig(t, "mqtt:\n  enabled: false\n")
	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1883, doc.MQTT.Port)
	assert.Equal(t, 10*time.Second, doc.MQTT.ReconnectInterval.Std())
	assert.Equal(t, 60*time.Second, doc.Scanner.Cycle.Std())
}

func TestOverlayCLITakesPrecedenceOverFile(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	doc, err := Load(path)
	require.NoError(t, err)

	enabled := false
	overlay := Overlay{MQTTEnabled: &enabled, MQTTHost: "override.local"}
	doc = overlay.Apply(doc)

	assert.False(t, doc.MQTT.Enabled)
	assert.Equal(t, "override.local", doc.MQTT.Host)
}

func TestValidateAcceptsSampleDocument(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	doc, err := Load(path)
	require.NoError(t, err)

	aliases, err := Validate(doc, nil)
	require.NoError(t, err)
	assert.True(t, aliases.Has("porch-light"))
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	doc := Document{Automations: []Rule{{If: RuleCondition{Source: "bogus"}}}}
	_, err := Validate(doc, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestValidateRequiresTopicForMQTT(t *testing.T) {
	doc := Document{Automations: []Rule{{If: RuleCondition{Source: "mqtt-event"}}}}
	_, err := Validate(doc, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic")
}

func TestValidateRejectsTopicForBLE(t *testing.T) {
	doc := Document{Automations: []Rule{{If: RuleCondition{Source: "ble-event", Topic: "x"}}}}
	_, err := Validate(doc, nil)
	require.Error(t, err)
}

func TestValidateRejectsDuplicateAlias(t *testing.T) {
	doc := Document{Devices: []Device{
		{Alias: "a", Address: "aa:aa"},
		{Alias: "a", Address: "bb:bb"},
	}}
	_, err := Validate(doc, nil)
	require.Error(t, err)
}

func TestValidateRejectsUnknownDeviceOnRule(t *testing.T) {
	doc := Document{Automations: []Rule{{If: RuleCondition{Source: "ble-event", Device: "ghost"}}}}
	_, err := Validate(doc, nil)
	require.Error(t, err)
}

func TestValidateDeviceCommandRequiresExactlyOneTarget(t *testing.T) {
	doc := Document{
		Devices: []Device{{Alias: "lamp", Address: "aa:aa"}},
		Automations: []Rule{{
			If:   RuleCondition{Source: "ble-event"},
			Then: []Action{{Type: "device-command", Alias: "lamp", Address: "bb:bb"}},
		}},
	}
	_, err := Validate(doc, nil)
	require.Error(t, err)
}

func TestValidateWarnsOnAliasAttributeCollision(t *testing.T) {
	doc := Document{Devices: []Device{{Alias: "temperature", Address: "aa:aa"}}}
	var warned string
	_, err := Validate(doc, func(msg string) { warned = msg })
	require.NoError(t, err)
	assert.Contains(t, warned, "temperature")
}
