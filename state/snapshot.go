package state

import "github.com/rustyeddy/sentinel/rawevent"

// Snapshot is a read-only, alias-indexed view over all known entities
// at one dispatch. It is never mutated after construction.
type Snapshot struct {
	byAlias map[string]rawevent.Event
}

// Attr returns the named attribute on the entity bound to alias.
func (s Snapshot) Attr(alias, name string) (any, bool) {
	evt, ok := s.byAlias[alias]
	if !ok {
		return nil, false
	}
	return evt.Attr(name)
}

// Event returns the raw event recorded for the given alias.
func (s Snapshot) Event(alias string) (rawevent.Event, bool) {
	evt, ok := s.byAlias[alias]
	return evt, ok
}

// NewSnapshot builds an alias view over a key-indexed store snapshot
// using the given alias table. Aliases whose key has never been
// observed are simply absent from the resulting view.
//
// This implementation includes the just-written (triggering) event in
// the view when the triggering device also has a configured alias --
// SPEC_FULL.md resolves the corpus's "does snapshot include the
// just-written event" ambiguity in favor of inclusion, so a rule can
// reference its own triggering device by alias.
func NewSnapshot(byKey map[string]rawevent.Event, aliases AliasTable) Snapshot {
	view := make(map[string]rawevent.Event, len(aliases))
	for alias, key := range aliases.aliasToKey {
		if evt, ok := byKey[key]; ok {
			view[alias] = evt
		}
	}
	return Snapshot{byAlias: view}
}
