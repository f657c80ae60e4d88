// Package trigger implements the two per-rule trigger state machines:
// edge (fire on a false->true condition transition) and duration (fire
// only once the condition has held true for a configured span).
package trigger

import (
	"sync"
	"time"

	"github.com/rustyeddy/sentinel/condition"
	"github.com/rustyeddy/sentinel/placeholder"
	"github.com/rustyeddy/sentinel/state"
)

// edgeState mirrors the Low/High automaton of §4.4. The zero value is
// Low, so a newly seen entity key starts Low without extra bookkeeping.
type edgeState bool

const (
	low  edgeState = false
	high edgeState = true
)

// Edge implements the edge trigger: fires on each Low->High transition
// of the condition block, per entity key. Safe for concurrent use
// across distinct keys; callers serialize calls for the same key (the
// handler already does this, per §5's per-key ordering guarantee).
type Edge struct {
	Conditions condition.Map

	mu     sync.Mutex
	states map[string]edgeState
}

// NewEdge builds an Edge trigger for the given condition block.
func NewEdge(conditions condition.Map) *Edge {
	return &Edge{Conditions: conditions, states: make(map[string]edgeState)}
}

// Eval advances the trigger for one event and reports whether it
// fired.
func (e *Edge) Eval(obj *state.Object, aliases state.AliasTable, warn placeholder.Warner) bool {
	result := condition.Eval(e.Conditions, obj, aliases, warn)

	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.states[obj.ID]

	switch {
	case prev == low && result:
		e.states[obj.ID] = high
		return true
	case prev == high && !result:
		e.states[obj.ID] = low
		return false
	default:
		return false
	}
}

// durationPhase is one entity's position in the Idle/Arming/Fired
// automaton (§4.4).
type durationPhase int

const (
	idle durationPhase = iota
	arming
	fired
)

type durationEntry struct {
	phase durationPhase
	token uint64 // incremented on every cancellation; guards stale timers
	last  *state.Object
}

// FireFunc is invoked from the timer goroutine when a duration trigger
// expires without being cancelled. obj is the StateObject from the
// event that (re-)armed the timer, handed back so the runner has
// something to format actions against. It must be safe to call from
// any goroutine; callers typically hand it a channel send or a
// callback that re-enters the handler's single pipeline task.
type FireFunc func(key string, obj *state.Object)

// Duration implements the duration-sustained trigger: arms a timer
// when the condition first becomes true, and fires only if it is still
// true after Duration has elapsed uninterrupted.
type Duration struct {
	Conditions condition.Map
	Duration   time.Duration
	OnFire     FireFunc

	mu      sync.Mutex
	entries map[string]*durationEntry
}

// NewDuration builds a Duration trigger. onFire is invoked (from a
// timer goroutine) when an armed timer expires without cancellation.
func NewDuration(conditions condition.Map, d time.Duration, onFire FireFunc) *Duration {
	return &Duration{
		Conditions: conditions,
		Duration:   d,
		OnFire:     onFire,
		entries:    make(map[string]*durationEntry),
	}
}

// Eval advances the trigger for one event. It never itself reports
// Fire -- that is delivered asynchronously through OnFire when the
// timer expires, per §4.4.
func (d *Duration) Eval(obj *state.Object, aliases state.AliasTable, warn placeholder.Warner) {
	result := condition.Eval(d.Conditions, obj, aliases, warn)

	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[obj.ID]
	if !ok {
		e = &durationEntry{phase: idle}
		d.entries[obj.ID] = e
	}

	switch e.phase {
	case idle:
		if result {
			e.phase = arming
			e.last = obj
			d.arm(obj.ID, e)
		}
	case arming:
		if !result {
			e.phase = idle
			e.token++
		} else {
			e.last = obj
		}
	case fired:
		if !result {
			e.phase = idle
		}
	}
}

// arm starts the timer goroutine for entry e under key. Must be called
// with d.mu held.
func (d *Duration) arm(key string, e *durationEntry) {
	myToken := e.token
	time.AfterFunc(d.Duration, func() {
		d.mu.Lock()
		cur, ok := d.entries[key]
		stale := !ok || cur.token != myToken || cur.phase != arming
		var fireObj *state.Object
		if !stale {
			cur.phase = fired
			fireObj = cur.last
		}
		d.mu.Unlock()
		if !stale && d.OnFire != nil {
			d.OnFire(key, fireObj)
		}
	})
}

// CancelAll stops every pending timer by bumping each entry's token,
// so any in-flight AfterFunc callback observes staleness and does not
// emit Fire. Used on shutdown and on reload (§5 shutdown, §4.8 reload).
func (d *Duration) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.entries {
		e.token++
		if e.phase == arming {
			e.phase = idle
		}
	}
}
