package store

import (
	"sync"
	"testing"

	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/rustyeddy/sentinel/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndUpdateReturnsPrevious(t *testing.T) {
	s := New(state.NewAliasTable())

	_, had, _ := s.GetAndUpdate(rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrTemperature: 20.0}))
	assert.False(t, had)

	prev, had, _ := s.GetAndUpdate(rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrTemperature: 21.0}))
	require.True(t, had)
	v, ok := prev.Attr(rawevent.AttrTemperature)
	require.True(t, ok)
	assert.Equal(t, 20.0, v)
}

func TestGetAndUpdateSnapshotIncludesTriggeringEvent(t *testing.T) {
	aliases := state.NewAliasTable()
	require.NoError(t, aliases.Add("porch", "aa:bb", nil))
	s := New(aliases)

	_, _, snap := s.GetAndUpdate(rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrTemperature: 19.5}))

	v, ok := snap.Attr("porch", rawevent.AttrTemperature)
	require.True(t, ok)
	assert.Equal(t, 19.5, v)
}

func TestGetReturnsStoredEvent(t *testing.T) {
	s := New(state.NewAliasTable())
	s.GetAndUpdate(rawevent.NewMQTT("home/sensor/1", []byte(`{"humidity": 55}`)))

	evt, ok := s.Get("home/sensor/1")
	require.True(t, ok)
	v, ok := evt.Attr("humidity")
	require.True(t, ok)
	assert.Equal(t, 55.0, v)

	_, ok = s.Get("unknown")
	assert.False(t, ok)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := New(state.NewAliasTable())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.GetAndUpdate(rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrButtonCount: n}))
			s.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
}
