package rawevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBLENormalizesAddress(t *testing.T) {
	e := NewBLE("AA:BB:CC:DD:EE:FF", map[string]any{AttrTemperature: 28.5})
	assert.Equal(t, BLE, e.Kind)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", e.Key)
	v, ok := e.Attr(AttrAddress)
	assert.True(t, ok)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", v)
}

func TestNewMQTTPromotesJSONObjectKeys(t *testing.T) {
	e := NewMQTT("home/sensor/1", []byte(`{"temperature": 21.5, "humidity": 40}`))
	assert.Equal(t, MQTT, e.Kind)
	assert.Equal(t, "home/sensor/1", e.Key)

	temp, ok := e.Attr("temperature")
	assert.True(t, ok)
	assert.Equal(t, 21.5, temp)

	topic, ok := e.Attr("topic")
	assert.True(t, ok)
	assert.Equal(t, "home/sensor/1", topic)
}

func TestNewMQTTNonObjectPayloadKeepsRaw(t *testing.T) {
	e := NewMQTT("home/sensor/1", []byte("on"))
	payload, ok := e.Attr("payload")
	assert.True(t, ok)
	assert.Equal(t, "on", payload)
	_, ok = e.Attr("temperature")
	assert.False(t, ok)
}

func TestAttrMissing(t *testing.T) {
	e := Event{}
	_, ok := e.Attr("anything")
	assert.False(t, ok)
}
