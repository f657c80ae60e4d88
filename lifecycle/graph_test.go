package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/rustyeddy/sentinel/blescan"
	"github.com/rustyeddy/sentinel/config"
	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() config.Document {
	return config.Document{
		Devices: []config.Device{
			{Alias: "hall-sensor", Address: "aa:bb:cc:dd:ee:ff", Params: map[string]any{"name": "hall", "model": "motion"}},
		},
		Automations: []config.Rule{
			{
				Name: "motion-logged",
				If:   config.RuleCondition{Source: "ble-event", Device: "hall-sensor", Conditions: map[string]string{"motion_detected": "true"}},
				Then: []config.Action{{Type: "log", Message: "motion on {hall-sensor}"}},
			},
		},
	}
}

func TestBuildGraphCompilesWithoutIO(t *testing.T) {
	g, err := buildGraph(sampleDoc(), buildOpts{})
	require.NoError(t, err)
	assert.NotNil(t, g.Handler)
	assert.Len(t, g.Components(), 3)
}

func TestBuildGraphRejectsInvalidConfig(t *testing.T) {
	doc := sampleDoc()
	doc.Automations[0].If.Source = "carrier-pigeon"
	_, err := buildGraph(doc, buildOpts{})
	assert.Error(t, err)
}

func TestGraphStartStopWithMockScanner(t *testing.T) {
	events := make(chan rawevent.Event, 4)
	factory := func(cfg blescan.Config) blescan.Scanner {
		return blescan.NewMock(blescan.Config{Cycle: 10 * time.Millisecond}, func() []rawevent.Event {
			return []rawevent.Event{rawevent.NewBLE("aa:bb:cc:dd:ee:ff", map[string]any{"motion_detected": true})}
		})
	}
	g, err := buildGraph(sampleDoc(), buildOpts{scannerFactory: factory})
	require.NoError(t, err)

	require.NoError(t, g.Start(context.Background()))
	defer g.Stop(context.Background())

	// Give the mock scanner a cycle to deliver at least once and the
	// handler to commit it into the store.
	require.Eventually(t, func() bool {
		_, ok := g.Store.Get("aa:bb:cc:dd:ee:ff")
		return ok
	}, time.Second, 5*time.Millisecond)

	close(events)
}

func TestGraphStartRollsBackOnComponentFailure(t *testing.T) {
	doc := sampleDoc()
	doc.MQTT.Enabled = true
	doc.MQTT.Host = "127.0.0.1"
	doc.MQTT.Port = 1 // nothing listens here; Connect must fail fast

	g, err := buildGraph(doc, buildOpts{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = g.Start(ctx)
	assert.Error(t, err)

	for _, c := range g.Components() {
		assert.False(t, c.Running(), "component %s should have rolled back", c.Name())
	}
}

func TestGraphRecordsMetricsWithIdentity(t *testing.T) {
	g, err := buildGraph(sampleDoc(), buildOpts{})
	require.NoError(t, err)

	evt := rawevent.NewBLE("aa:bb:cc:dd:ee:ff", map[string]any{"battery": 87.0})
	g.recordMetrics(evt)

	name, model, ok := g.identityFor("aa:bb:cc:dd:ee:ff")
	require.True(t, ok)
	assert.Equal(t, "hall", name)
	assert.Equal(t, "motion", model)
}
