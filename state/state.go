// Package state defines the central abstraction of the automation
// engine: the StateObject, an immutable view of one triggering event,
// its immediate predecessor, and a point-in-time snapshot of every
// other known entity, addressable only through a configured alias.
package state

import "github.com/rustyeddy/sentinel/rawevent"

// Object is immutable after construction. It is created only by the
// automation handler and must never be mutated once handed to a runner.
type Object struct {
	Kind       rawevent.Kind
	ID         string
	Attributes map[string]any
	Previous   *Object
	Snapshot   Snapshot
}

// New builds a StateObject from a raw event, its predecessor (nil if
// this is the first event seen for the key), and an alias-indexed
// snapshot of the rest of the store.
func New(evt rawevent.Event, previous *Object, snap Snapshot) *Object {
	return &Object{
		Kind:       evt.Kind,
		ID:         evt.Key,
		Attributes: evt.Attributes,
		Previous:   previous,
		Snapshot:   snap,
	}
}

// Attr returns the named attribute on the triggering event.
func (o *Object) Attr(name string) (any, bool) {
	if o == nil || o.Attributes == nil {
		return nil, false
	}
	v, ok := o.Attributes[name]
	return v, ok
}

// PreviousAttr returns the named attribute from the previous event, or
// false if there was no previous event or it lacked the attribute.
func (o *Object) PreviousAttr(name string) (any, bool) {
	if o == nil || o.Previous == nil {
		return nil, false
	}
	return o.Previous.Attr(name)
}

// AliasAttr returns the named attribute from the snapshot entry bound
// to the given alias.
func (o *Object) AliasAttr(alias, name string) (any, bool) {
	if o == nil {
		return nil, false
	}
	return o.Snapshot.Attr(alias, name)
}
