// Package action implements the one-executor-per-type set a rule's
// "then" block compiles to: log, shell, webhook, mqtt-publish, and
// device-command (§4.5). Executors never block the event pipeline --
// the automation runner dispatches each onto a worker so ingestion
// stays live (§5).
package action

import (
	"context"

	"github.com/rustyeddy/sentinel/state"
)

// Executor runs one action against a dispatched state. Errors are
// always logged by the runner and never abort the sibling executors
// of the same rule (§4.6, §7).
type Executor interface {
	Execute(ctx context.Context, obj *state.Object, aliases state.AliasTable) error
}
