package action

import (
	"context"
	"log/slog"

	"github.com/rustyeddy/sentinel/placeholder"
	"github.com/rustyeddy/sentinel/state"
)

// Log emits one line at Level (default info) with Message formatted
// against the dispatched state.
type Log struct {
	Level   slog.Level
	Message string

	Logger *slog.Logger
}

func (a *Log) Execute(ctx context.Context, obj *state.Object, aliases state.AliasTable) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	msg := placeholder.Resolve(a.Message, obj, aliases, func(w string) { logger.Warn(w) })
	logger.Log(ctx, a.Level, msg, "entity", obj.ID)
	return nil
}
