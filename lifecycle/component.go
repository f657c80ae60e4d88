// Package lifecycle is the component supervisor of §4.8: it owns a
// set of pluggable components (scanner, broker client, metrics
// server, handler), brings them up in dependency order with fail-fast
// semantics, rebuilds the graph on SIGHUP with rollback to the last
// known good generation, and shuts down gracefully on SIGTERM/SIGINT.
package lifecycle

import "context"

// Component is the contract every pluggable piece of the engine
// satisfies (§4.8): start, stop, and whether config enables it.
// IsRunning reflects whether Start has succeeded and Stop has not yet
// been called.
type Component interface {
	Name() string
	Enabled() bool
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Running() bool
}

// baseComponent implements the Running/Enabled bookkeeping so concrete
// components only need to provide their own Start/Stop bodies.
type baseComponent struct {
	name    string
	enabled bool
	running bool
}

func (b *baseComponent) Name() string   { return b.name }
func (b *baseComponent) Enabled() bool  { return b.enabled }
func (b *baseComponent) Running() bool  { return b.running }
func (b *baseComponent) setRunning(v bool) { b.running = v }
