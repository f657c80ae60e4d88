package automation

import (
	"context"

	"github.com/rustyeddy/sentinel/state"
	"github.com/rustyeddy/sentinel/trigger"
)

// DurationRunner adapts a duration trigger to the Dispatcher interface
// the handler registers against. Edge rules fire synchronously inside
// Run; duration rules instead arm a timer in Run and fire later, from
// the trigger's own goroutine, through the bound Runner's Fire method
// (§4.4, §4.6).
type DurationRunner struct {
	Trigger *trigger.Duration
	Runner  *Runner

	aliases state.AliasTable
}

// NewDurationRunner binds trig's OnFire callback to runner.Fire. aliases
// is the fixed alias table the engine's current reload generation is
// using; it is captured here because OnFire only carries a key and the
// triggering StateObject, not the alias table.
func NewDurationRunner(trig *trigger.Duration, runner *Runner, aliases state.AliasTable) *DurationRunner {
	dr := &DurationRunner{Trigger: trig, Runner: runner, aliases: aliases}
	trig.OnFire = func(key string, obj *state.Object) {
		if obj == nil {
			return
		}
		runner.Fire(context.Background(), obj, aliases)
	}
	return dr
}

// Run advances the duration trigger for one event. It never itself
// invokes the runner; eventual firing happens asynchronously via
// OnFire.
func (d *DurationRunner) Run(ctx context.Context, obj *state.Object, aliases state.AliasTable) {
	warn := func(w string) { d.Runner.Logger.Warn(w, "rule", d.Runner.Name) }
	d.Trigger.Eval(obj, aliases, warn)
}
