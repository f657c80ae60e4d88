package blescan

import (
	"context"
	"testing"
	"time"

	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDeliversAdvertisementsOnCycle(t *testing.T) {
	events := make(chan rawevent.Event, 4)
	m := NewMock(Config{Cycle: 15 * time.Millisecond}, func() []rawevent.Event {
		return []rawevent.Event{rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrRSSI: -50})}
	})

	require.NoError(t, m.Start(context.Background(), func(e rawevent.Event) { events <- e }))
	defer m.Stop()

	select {
	case e := <-events:
		assert.Equal(t, "aa:bb", e.Key)
	case <-time.After(time.Second):
		t.Fatal("expected at least one advertisement")
	}
}

func TestMockStopEndsDelivery(t *testing.T) {
	var count int
	m := NewMock(Config{Cycle: 10 * time.Millisecond}, func() []rawevent.Event {
		count++
		return nil
	})
	require.NoError(t, m.Start(context.Background(), func(rawevent.Event) {}))
	time.Sleep(25 * time.Millisecond)
	require.NoError(t, m.Stop())

	seenAtStop := count
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, seenAtStop, count)
}
