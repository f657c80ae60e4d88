// Package automation composes the pieces below it -- condition,
// trigger, action -- into the two objects the spec calls out: the
// ActionRunner (one rule's trigger plus its ordered executor list plus
// a cooldown ledger) and the AutomationHandler (routes raw events
// through the store into the runner set) (§4.6, §4.7).
package automation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rustyeddy/sentinel/action"
	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/rustyeddy/sentinel/state"
)

// edgeTrigger narrows trigger.Edge to the one method Runner needs, so
// Runner can be tested against a fake.
type edgeTrigger interface {
	Eval(obj *state.Object, aliases state.AliasTable, warn func(string)) bool
}

// Runner composes one rule's trigger with its ordered executors and a
// per-(rule, entity-key) cooldown ledger (§4.6). Duration-triggered
// rules instead drive execution from the trigger's OnFire callback;
// see DurationRunner.
type Runner struct {
	Name      string
	Trigger   edgeTrigger
	Executors []action.Executor
	Cooldown  time.Duration

	Logger *slog.Logger

	mu       sync.Mutex
	lastFire map[string]time.Time

	// dispatched tracks in-flight executor goroutines spawned by fire,
	// so tests and a graceful shutdown can drain them instead of racing
	// on a background goroutine (Wait).
	dispatched sync.WaitGroup

	now func() time.Time
}

// NewRunner builds a Runner for an edge-triggered rule.
func NewRunner(name string, trig edgeTrigger, executors []action.Executor, cooldown time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Name:      name,
		Trigger:   trig,
		Executors: executors,
		Cooldown:  cooldown,
		Logger:    logger,
		lastFire:  make(map[string]time.Time),
		now:       time.Now,
	}
}

// Run advances the trigger for one event and, on Fire, consults the
// cooldown ledger and dispatches every executor in order (§4.6).
func (r *Runner) Run(ctx context.Context, obj *state.Object, aliases state.AliasTable) {
	warn := func(w string) { r.Logger.Warn(w, "rule", r.Name) }
	if !r.Trigger.Eval(obj, aliases, warn) {
		return
	}
	r.fire(ctx, obj, aliases)
}

// Fire is called directly by a duration trigger's OnFire callback
// (bypassing the edge-trigger Eval path), and by Run on a rising edge.
func (r *Runner) Fire(ctx context.Context, obj *state.Object, aliases state.AliasTable) {
	r.fire(ctx, obj, aliases)
}

// fire consults the cooldown ledger on the calling goroutine (so two
// events for the same entity arriving back to back are serialized
// against the ledger), then hands the ordered executor chain off to
// its own goroutine. A blocking executor -- a slow webhook, a shell
// command waiting on a subprocess -- stalls only that goroutine, never
// the ingestion path that called Run/Fire (§4.5, §5 "must not block
// the event pipeline").
func (r *Runner) fire(ctx context.Context, obj *state.Object, aliases state.AliasTable) {
	now := r.now()

	r.mu.Lock()
	last, ok := r.lastFire[obj.ID]
	if ok && r.Cooldown > 0 && now.Sub(last) < r.Cooldown {
		r.mu.Unlock()
		r.Logger.Debug("rule suppressed by cooldown", "rule", r.Name, "entity", obj.ID)
		return
	}
	r.lastFire[obj.ID] = now
	r.mu.Unlock()

	r.dispatched.Add(1)
	go func() {
		defer r.dispatched.Done()
		for i, ex := range r.Executors {
			if err := ex.Execute(ctx, obj, aliases); err != nil {
				r.Logger.Warn("action executor failed", "rule", r.Name, "entity", obj.ID, "index", i, "error", err)
			}
		}
	}()
}

// Wait blocks until every executor chain dispatched by fire so far has
// finished. Tests use it to observe dispatch results deterministically;
// a supervisor shutdown can use it to drain in-flight actions before
// the process exits.
func (r *Runner) Wait() {
	r.dispatched.Wait()
}

// ResetCooldowns clears the cooldown ledger. A reload does not call it:
// each reload generation builds new Runners, whose ledgers start empty
// (§3 Lifecycles, SPEC_FULL.md's Open Question 2 resolution).
func (r *Runner) ResetCooldowns() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFire = make(map[string]time.Time)
}

// Source names a runner's event source (§3 Rule invariants).
type Source string

const (
	SourceBLE  Source = "ble-event"
	SourceMQTT Source = "mqtt-event"
)

// rawKindToSource maps a rawevent.Kind to the Source tag a rule
// declares in its "if" block.
func rawKindToSource(k rawevent.Kind) Source {
	if k == rawevent.BLE {
		return SourceBLE
	}
	return SourceMQTT
}
