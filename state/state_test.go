package state

import (
	"testing"

	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectAttrAndPreviousAttr(t *testing.T) {
	prev := New(rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrButtonCount: 5}), nil, Snapshot{})
	cur := New(rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrButtonCount: 6}), prev, Snapshot{})

	v, ok := cur.Attr(rawevent.AttrButtonCount)
	require.True(t, ok)
	assert.Equal(t, 6, v)

	pv, ok := cur.PreviousAttr(rawevent.AttrButtonCount)
	require.True(t, ok)
	assert.Equal(t, 5, pv)
}

func TestObjectPreviousAttrNilPrevious(t *testing.T) {
	cur := New(rawevent.NewBLE("aa:bb", nil), nil, Snapshot{})
	_, ok := cur.PreviousAttr(rawevent.AttrButtonCount)
	assert.False(t, ok)
}

func TestAliasAttr(t *testing.T) {
	aliases := NewAliasTable()
	require.NoError(t, aliases.Add("window", "11:22:33:44:55:66", nil))

	byKey := map[string]rawevent.Event{
		"11:22:33:44:55:66": rawevent.NewBLE("11:22:33:44:55:66", map[string]any{rawevent.AttrContactOpen: false}),
	}
	snap := NewSnapshot(byKey, aliases)
	cur := New(rawevent.NewBLE("aa:bb", map[string]any{rawevent.AttrTemperature: 29.0}), nil, snap)

	v, ok := cur.AliasAttr("window", rawevent.AttrContactOpen)
	require.True(t, ok)
	assert.Equal(t, false, v)

	_, ok = cur.AliasAttr("unknown-alias", rawevent.AttrContactOpen)
	assert.False(t, ok)
}

func TestAliasTableDuplicateRejected(t *testing.T) {
	aliases := NewAliasTable()
	require.NoError(t, aliases.Add("meter", "aa:aa", nil))
	err := aliases.Add("meter", "bb:bb", nil)
	assert.Error(t, err)
}
