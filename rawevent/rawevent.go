// Package rawevent defines the source-specific records the automation
// engine ingests: BLE advertisements and MQTT messages. Both reduce to
// a stable key plus a flat attribute map, which is all the rest of the
// engine (state, condition, trigger) ever looks at.
package rawevent

import (
	"encoding/json"
	"strings"
)

// Kind distinguishes the two event sources the engine understands.
// It controls entity-key derivation and rule source-matching.
type Kind string

const (
	BLE  Kind = "ble"
	MQTT Kind = "mqtt"
)

// Event is a flat, source-tagged attribute bag. BLE events key on the
// device address; MQTT events key on the concrete topic received.
type Event struct {
	Kind       Kind
	Key        string
	Attributes map[string]any
}

// BLE model-specific attribute names, enumerated so config validation
// can warn about alias/attribute name collisions (SPEC_FULL.md).
const (
	AttrAddress        = "address"
	AttrModelName      = "modelName"
	AttrRSSI           = "rssi"
	AttrBattery        = "battery"
	AttrTemperature    = "temperature"
	AttrHumidity       = "humidity"
	AttrIsOn           = "isOn"
	AttrContactOpen    = "contact_open"
	AttrMotionDetected = "motion_detected"
	AttrButtonCount    = "button_count"
	AttrPosition       = "position"
	AttrInMotion       = "in_motion"
	AttrIsLight        = "is_light"
)

// CommonAttributeNames lists every attribute name above, used by config
// validation to warn when an alias shadows a commonly used attribute.
func CommonAttributeNames() []string {
	return []string{
		AttrAddress, AttrModelName, AttrRSSI, AttrBattery, AttrTemperature,
		AttrHumidity, AttrIsOn, AttrContactOpen, AttrMotionDetected,
		AttrButtonCount, AttrPosition, AttrInMotion, AttrIsLight,
	}
}

// NewBLE builds a BLE raw event from the address and a model-specific
// attribute set. The address is lower-cased to keep entity keys stable
// regardless of what case the scanner collaborator reports.
func NewBLE(address string, attrs map[string]any) Event {
	key := normalizeAddress(address)
	a := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		a[k] = v
	}
	a[AttrAddress] = key
	return Event{Kind: BLE, Key: key, Attributes: a}
}

// NewMQTT builds an MQTT raw event from the topic and payload bytes.
// If the payload parses as a JSON object, its top-level keys are
// promoted to attributes alongside the raw topic/payload pair.
func NewMQTT(topic string, payload []byte) Event {
	a := map[string]any{
		"topic":   topic,
		"payload": string(payload),
	}
	var obj map[string]any
	if len(payload) > 0 && json.Unmarshal(payload, &obj) == nil {
		for k, v := range obj {
			a[k] = v
		}
	}
	return Event{Kind: MQTT, Key: topic, Attributes: a}
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Attr returns the named attribute and whether it was present.
func (e Event) Attr(name string) (any, bool) {
	if e.Attributes == nil {
		return nil, false
	}
	v, ok := e.Attributes[name]
	return v, ok
}
