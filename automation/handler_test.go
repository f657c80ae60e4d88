package automation

import (
	"context"
	"testing"

	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/rustyeddy/sentinel/state"
	"github.com/rustyeddy/sentinel/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyRunner struct {
	calls []*state.Object
}

func (s *spyRunner) Run(ctx context.Context, obj *state.Object, aliases state.AliasTable) {
	s.calls = append(s.calls, obj)
}

func TestHandlerRoutesBLEEventToBLERunner(t *testing.T) {
	st := store.New(state.NewAliasTable())
	h := NewHandler(st, state.NewAliasTable(), nil)
	r := &spyRunner{}
	h.Register(SourceBLE, "", "", r)

	h.Handle(context.Background(), rawevent.NewBLE("aa:bb", nil))
	require.Len(t, r.calls, 1)
	assert.Equal(t, "aa:bb", r.calls[0].ID)
}

func TestHandlerIgnoresMismatchedSource(t *testing.T) {
	st := store.New(state.NewAliasTable())
	h := NewHandler(st, state.NewAliasTable(), nil)
	r := &spyRunner{}
	h.Register(SourceMQTT, "home/#", "", r)

	h.Handle(context.Background(), rawevent.NewBLE("aa:bb", nil))
	assert.Empty(t, r.calls)
}

func TestHandlerMatchesMQTTWildcardTopic(t *testing.T) {
	st := store.New(state.NewAliasTable())
	h := NewHandler(st, state.NewAliasTable(), nil)
	r := &spyRunner{}
	h.Register(SourceMQTT, "home/+/temp", "", r)

	h.Handle(context.Background(), rawevent.NewMQTT("home/kitchen/temp", []byte(`{"temperature":20}`)))
	require.Len(t, r.calls, 1)

	h.Handle(context.Background(), rawevent.NewMQTT("home/kitchen/humidity", []byte(`{}`)))
	assert.Len(t, r.calls, 1)
}

func TestHandlerBuildsPreviousFromStore(t *testing.T) {
	st := store.New(state.NewAliasTable())
	h := NewHandler(st, state.NewAliasTable(), nil)
	r := &spyRunner{}
	h.Register(SourceBLE, "", "", r)

	h.Handle(context.Background(), rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrButtonCount: 1}))
	h.Handle(context.Background(), rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrButtonCount: 2}))

	require.Len(t, r.calls, 2)
	pv, ok := r.calls[1].PreviousAttr(rawevent.AttrButtonCount)
	require.True(t, ok)
	assert.Equal(t, 1, pv)
}

func TestHandlerSnapshotIncludesTriggeringEventForAliasedDevice(t *testing.T) {
	aliases := state.NewAliasTable()
	require.NoError(t, aliases.Add("porch", "aa:bb", nil))
	st := store.New(aliases)
	h := NewHandler(st, aliases, nil)
	r := &spyRunner{}
	h.Register(SourceBLE, "", "", r)

	h.Handle(context.Background(), rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrTemperature: 18.0}))

	require.Len(t, r.calls, 1)
	v, ok := r.calls[0].AliasAttr("porch", rawevent.AttrTemperature)
	require.True(t, ok)
	assert.Equal(t, 18.0, v)
}

func TestHandlerDeviceScopeOnlyFiresForNamedDevice(t *testing.T) {
	st := store.New(state.NewAliasTable())
	h := NewHandler(st, state.NewAliasTable(), nil)
	r := &spyRunner{}
	h.Register(SourceBLE, "", "aa:bb", r)

	h.Handle(context.Background(), rawevent.NewBLE("cc:dd", nil))
	assert.Empty(t, r.calls, "rule scoped to aa:bb must not fire for a different entity's event")

	h.Handle(context.Background(), rawevent.NewBLE("aa:bb", nil))
	require.Len(t, r.calls, 1)
	assert.Equal(t, "aa:bb", r.calls[0].ID)
}
