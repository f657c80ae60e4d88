// Package store holds the latest known raw event for every entity key
// the engine has ever seen, keyed by the normalized BLE address or MQTT
// topic. It is the only mutable shared state in the engine; every other
// package either reads a Snapshot or receives an immutable state.Object.
package store

import (
	"sync"

	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/rustyeddy/sentinel/state"
)

// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	mu      sync.Mutex
	byKey   map[string]rawevent.Event
	aliases state.AliasTable
}

// New returns an empty Store bound to the given alias table. The alias
// table is fixed for the lifetime of the Store; a reload builds a new
// Store with the newly loaded aliases rather than mutating this one.
func New(aliases state.AliasTable) *Store {
	return &Store{
		byKey:   make(map[string]rawevent.Event),
		aliases: aliases,
	}
}

// GetAndUpdate atomically records evt as the latest event for its key
// and returns whatever was previously recorded there, if anything. The
// returned snapshot is taken after evt has been committed, so it
// includes evt itself when evt's key carries a configured alias.
//
// This single lock scope is the engine's entire concurrency boundary
// (§4.3, §5): a BLE scan result and an MQTT message for different keys
// never race on the same map entry, and a snapshot reader never
// observes a torn write.
func (s *Store) GetAndUpdate(evt rawevent.Event) (previous rawevent.Event, hadPrevious bool, snap state.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, hadPrevious = s.byKey[evt.Key]
	s.byKey[evt.Key] = evt
	snap = state.NewSnapshot(s.byKey, s.aliases)
	return previous, hadPrevious, snap
}

// Get returns the latest recorded event for key without mutating the
// store.
func (s *Store) Get(key string) (rawevent.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evt, ok := s.byKey[key]
	return evt, ok
}

// Snapshot returns a read-consistent alias view of every entity known
// to the store at the moment of the call.
func (s *Store) Snapshot() state.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return state.NewSnapshot(s.byKey, s.aliases)
}

// Len reports how many distinct entity keys the store has recorded.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}
